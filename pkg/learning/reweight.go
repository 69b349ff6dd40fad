package learning

// Reweighter is called once per unscored word after a prediction has been
// computed. It is the attachment point for adding novel words to a model with
// a weight derived from the message's overall score. Implementations that
// change the models must do so through Retrain.
type Reweighter interface {
	Reweight(word UnscoredWord, pred *Prediction)
}

// NopReweighter ignores unscored words
type NopReweighter struct{}

func (NopReweighter) Reweight(UnscoredWord, *Prediction) {}

// ReweighterFunc adapts a function to Reweighter
type ReweighterFunc func(word UnscoredWord, pred *Prediction)

func (f ReweighterFunc) Reweight(word UnscoredWord, pred *Prediction) { f(word, pred) }
