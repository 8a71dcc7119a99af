// Package stats provides the statistical helper the experiment driver uses
// to compare engine variants/configurations across seeded runs: a Welch's
// two-sample t-test over summary statistics, matching the original
// planner's ttest.py.
package stats

import "math"

// WelchTTest computes the t-statistic, Welch-Satterthwaite degrees of
// freedom, and two-tailed p-value for two independent samples described by
// their mean, standard deviation, and sample size.
func WelchTTest(mean1, mean2, stdev1, stdev2 float64, n1, n2 int) (tStat, df, pValue float64) {
	var1 := stdev1 * stdev1
	var2 := stdev2 * stdev2
	nf1, nf2 := float64(n1), float64(n2)

	standardError := math.Sqrt(var1/nf1 + var2/nf2)
	meanDiff := mean1 - mean2

	numerator := (var1/nf1 + var2/nf2) * (var1/nf1 + var2/nf2)
	denominator := (var1*var1)/(nf1*nf1*(nf1-1)) + (var2*var2)/(nf2*nf2*(nf2-1))
	df = numerator / denominator

	if standardError == 0 {
		return 0, df, 1
	}

	tStat = meanDiff / standardError
	pValue = 2 * (1 - studentTCDF(math.Abs(tStat), df))
	return
}

// studentTCDF evaluates the CDF of Student's t-distribution with df degrees
// of freedom, via the regularized incomplete beta function. No package in
// the example pack offers a t-distribution CDF (numpy/scipy's role in the
// original has no ecosystem analogue among the retrieved repos), so this is
// a self-contained numeric routine rather than a dropped dependency.
func studentTCDF(t, df float64) float64 {
	x := df / (df + t*t)
	ib := regularizedIncompleteBeta(x, df/2, 0.5)
	return 1 - 0.5*ib
}

// regularizedIncompleteBeta computes I_x(a, b) via its continued-fraction
// expansion (Numerical Recipes' betacf), the standard approach absent a
// library implementation.
func regularizedIncompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lbeta := lgamma(a+b) - lgamma(a) - lgamma(b) + a*math.Log(x) + b*math.Log(1-x)
	front := math.Exp(lbeta)

	if x < (a+1)/(a+b+2) {
		return front * betacf(x, a, b) / a
	}
	return 1 - front*betacf(1-x, b, a)/b
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// betacf evaluates the continued fraction for the incomplete beta function
// using the modified Lentz method.
func betacf(x, a, b float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		fpmin   = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		mf := float64(m)
		m2 := 2 * mf

		aa := mf * (b - mf) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + mf) * (qab + mf) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
