package models

// AccuracyCounter tracks predicted labels against ground truth
type AccuracyCounter struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Record counts one comparison
func (a *AccuracyCounter) Record(predicted, actual int) {
	if predicted == actual {
		a.Correct++
	} else {
		a.Incorrect++
	}
}

// Total returns the number of compared games
func (a AccuracyCounter) Total() int {
	return a.Correct + a.Incorrect
}

// Ratio returns correct/total, or 0 with ok=false when no games were compared
func (a AccuracyCounter) Ratio() (ratio float64, ok bool) {
	total := a.Total()
	if total == 0 {
		return 0, false
	}
	return float64(a.Correct) / float64(total), true
}
