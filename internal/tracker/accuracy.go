package tracker

import "github.com/wonny/tickerscope/internal/contracts"

var reportOrder = []contracts.Classification{
	contracts.ClassRunner,
	contracts.ClassValue,
	contracts.ClassBoth,
	contracts.ClassAvoid,
	contracts.ClassWatch,
}

type accumulator struct {
	samples             int
	sum1, sum3, sum5    float64
	n1, n3, n5          int
	wins                int
	targetHits, targetN int
	stopHits, stopN     int
}

// Accuracy groups graded picks by classification. Picks with no return data
// are ignored; classifications without samples are omitted.
func Accuracy(picks []contracts.Pick) []contracts.AccuracyReport {
	groups := make(map[contracts.Classification]*accumulator)

	for _, p := range picks {
		r := p.Returns
		if r.IsEmpty() {
			continue
		}

		acc, ok := groups[p.Classification]
		if !ok {
			acc = &accumulator{}
			groups[p.Classification] = acc
		}
		acc.samples++

		if r.Return1d != nil {
			acc.sum1 += *r.Return1d
			acc.n1++
		}
		if r.Return3d != nil {
			acc.sum3 += *r.Return3d
			acc.n3++
		}
		if r.Return5d != nil {
			acc.sum5 += *r.Return5d
			acc.n5++
			if *r.Return5d > 0 {
				acc.wins++
			}
		}
		if r.HitTarget != nil {
			acc.targetN++
			if *r.HitTarget {
				acc.targetHits++
			}
		}
		if r.HitStopLoss != nil {
			acc.stopN++
			if *r.HitStopLoss {
				acc.stopHits++
			}
		}
	}

	reports := make([]contracts.AccuracyReport, 0, len(groups))
	for _, class := range reportOrder {
		acc, ok := groups[class]
		if !ok {
			continue
		}
		reports = append(reports, contracts.AccuracyReport{
			Classification: class,
			Samples:        acc.samples,
			AvgReturn1d:    mean(acc.sum1, acc.n1),
			AvgReturn3d:    mean(acc.sum3, acc.n3),
			AvgReturn5d:    mean(acc.sum5, acc.n5),
			WinRate5d:      rate(acc.wins, acc.n5),
			TargetHitRate:  rate(acc.targetHits, acc.targetN),
			StopHitRate:    rate(acc.stopHits, acc.stopN),
		})
	}

	return reports
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := contracts.Round2(sum / float64(n))
	return &v
}

func rate(hits, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := contracts.Round2(float64(hits) / float64(n) * 100)
	return &v
}
