package learning

import (
	"errors"
	"math"
	"testing"
)

func TestEstimate(t *testing.T) {
	conf, err := Estimate(0.8, 0.3, 100, 50, DefaultZScore)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	dev := math.Sqrt(0.8*0.2/100 + 0.3*0.7/50)
	if !approx(conf.PooledStdDev, dev) {
		t.Errorf("PooledStdDev = %v, expected %v", conf.PooledStdDev, dev)
	}
	if !approx(conf.Spam.Lower, 0.8-1.65*dev) || !approx(conf.Spam.Upper, 0.8+1.65*dev) {
		t.Errorf("Spam interval = %v", conf.Spam)
	}
	if !approx(conf.Ham.Lower, 0.3-1.65*dev) || !approx(conf.Ham.Upper, 0.3+1.65*dev) {
		t.Errorf("Ham interval = %v", conf.Ham)
	}
	if !approx(conf.Spam.Width(), conf.Ham.Width()) {
		t.Error("Both intervals share the pooled deviation")
	}
}

func TestEstimateContainsEstimate(t *testing.T) {
	for _, pSpam := range []float64{0, 0.1, 0.5, 0.9, 1} {
		for _, pHam := range []float64{0, 0.25, 0.5, 1} {
			for _, n := range []int{1, 7, 1000} {
				conf, err := Estimate(pSpam, pHam, n, n+3, DefaultZScore)
				if err != nil {
					t.Fatal(err)
				}
				if !conf.Spam.Contains(pSpam) || !conf.Ham.Contains(pHam) {
					t.Errorf("Intervals %v %v do not contain %v %v", conf.Spam, conf.Ham, pSpam, pHam)
				}
			}
		}
	}
}

func TestEstimateNarrowsWithMoreDocuments(t *testing.T) {
	prev := math.Inf(1)
	for _, n := range []int{1, 10, 100, 1000} {
		conf, err := Estimate(0.7, 0.4, n, 50, DefaultZScore)
		if err != nil {
			t.Fatal(err)
		}
		if conf.Spam.Width() >= prev {
			t.Errorf("n_spam=%d: width %v did not shrink from %v", n, conf.Spam.Width(), prev)
		}
		prev = conf.Spam.Width()
	}

	prev = math.Inf(1)
	for _, n := range []int{1, 10, 100, 1000} {
		conf, _ := Estimate(0.7, 0.4, 50, n, DefaultZScore)
		if conf.Ham.Width() >= prev {
			t.Errorf("n_ham=%d: width %v did not shrink from %v", n, conf.Ham.Width(), prev)
		}
		prev = conf.Ham.Width()
	}
}

func TestEstimateNotClamped(t *testing.T) {
	conf, err := Estimate(0.99, 0.01, 2, 2, DefaultZScore)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Spam.Upper <= 1 {
		t.Errorf("Spam upper bound = %v, expected > 1", conf.Spam.Upper)
	}
	if conf.Ham.Lower >= 0 {
		t.Errorf("Ham lower bound = %v, expected < 0", conf.Ham.Lower)
	}
}

func TestEstimateRequiresDocuments(t *testing.T) {
	if _, err := Estimate(0.5, 0.5, 0, 1, DefaultZScore); !errors.Is(err, ErrNoSpamDocuments) {
		t.Errorf("Expected ErrNoSpamDocuments, got %v", err)
	}
	if _, err := Estimate(0.5, 0.5, 1, 0, DefaultZScore); !errors.Is(err, ErrNoHamDocuments) {
		t.Errorf("Expected ErrNoHamDocuments, got %v", err)
	}
}

func TestIntervalString(t *testing.T) {
	if s := (Interval{Lower: -0.1, Upper: 0.25}).String(); s != "[-0.1000, 0.2500]" {
		t.Errorf("String = %s", s)
	}
}
