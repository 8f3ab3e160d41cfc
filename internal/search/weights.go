package search

// Weights is the per-signal weight vector blended into a final score:
// finalScore = Σ weight_i · normalized_i (spec.md §4.6).
type Weights struct {
	Symbol   float64
	Trigram  float64
	Filename float64
	Comment  float64
	Vector   float64
	Recency  float64
}

// weightsFor returns the sample contract spec.md §4.6 gives verbatim:
// "symbol emphasizes the symbol signal (~0.40); file emphasizes filename
// (~0.50); code emphasizes trigram (~0.30); bug emphasizes comment
// (~0.30)." The remaining weight is distributed across the other signals
// so each vector sums to 1 (recency excluded from the sum — it is an
// additive boost gated by EnableRecencySignal, not a share of the base
// blend, per spec.md's note that recency is "an optional sixth normalized
// signal").
var weightsFor = map[Intent]Weights{
	IntentSymbol: {Symbol: 0.40, Trigram: 0.25, Filename: 0.15, Comment: 0.10, Vector: 0.10},
	IntentFile:   {Symbol: 0.10, Trigram: 0.15, Filename: 0.50, Comment: 0.10, Vector: 0.15},
	IntentCode:   {Symbol: 0.20, Trigram: 0.30, Filename: 0.15, Comment: 0.15, Vector: 0.20},
	IntentBug:    {Symbol: 0.15, Trigram: 0.20, Filename: 0.10, Comment: 0.30, Vector: 0.25},
}

const recencyWeight = 0.10

func weightsForIntent(intent Intent) Weights {
	w, ok := weightsFor[intent]
	if !ok {
		w = weightsFor[IntentCode]
	}
	w.Recency = recencyWeight
	return w
}
