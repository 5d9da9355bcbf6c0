package lvp

// Stats holds the plain named counters spec.md §6 specifies, emitted at
// simulation end, plus the const_install/vptt_squash supplements
// SPEC_FULL.md adds from the gem5 drafts. Derived ratios are computed on
// read, mirroring timing/pipeline.BranchPredictorStats.
type Stats struct {
	Lookups       uint64
	PredTotal     uint64
	PredCorrect   uint64
	PredIncorrect uint64
	ConstPred     uint64
	ConstInval    uint64
	ConstRollback uint64
	ConstInstall  uint64
	VpttSquash    uint64
}

// PredRate returns pred_total/lookups.
func (s Stats) PredRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.PredTotal) / float64(s.Lookups)
}

// PredAccuracy returns pred_correct/(pred_correct+pred_incorrect).
func (s Stats) PredAccuracy() float64 {
	total := s.PredCorrect + s.PredIncorrect
	if total == 0 {
		return 0
	}
	return float64(s.PredCorrect) / float64(total)
}
