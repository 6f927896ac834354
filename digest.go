package searchspace

// SearchSpaceDigest is a flat, ephemeral summary of a search space's numeric
// structure for external numeric consumers. It is a read-only record, not
// meant to be stored: every index-based field is aligned with FeatureNames
// and goes stale the moment the space mutates.
type SearchSpaceDigest struct {
	// FeatureNames lists parameter names in insertion order.
	FeatureNames []string
	// Bounds holds the inclusive (lower, upper) pair for the parameter at the
	// same index in FeatureNames.
	Bounds [][2]float64
	// OrdinalFeatures indexes parameters treated as ordered discrete.
	OrdinalFeatures []int
	// CategoricalFeatures indexes parameters treated as unordered discrete.
	CategoricalFeatures []int
	// DiscreteChoices maps a discrete parameter's index to its ordered value
	// list.
	DiscreteChoices map[int][]float64
	// TaskFeatures indexes task parameters.
	TaskFeatures []int
	// FidelityFeatures indexes fidelity parameters.
	FidelityFeatures []int
	// TargetFidelities maps a fidelity parameter's index to its target value.
	TargetFidelities map[int]float64
}

// Digest summarizes the space's numeric structure. Only numeric parameters
// contribute: range parameters map to their bounds, numeric choice
// parameters to their value lists (ordinal when ordered, categorical
// otherwise), numeric fixed parameters to degenerate single-value bounds.
// Non-numeric parameters are skipped, so the digest may cover a strict
// subset of the space.
func (s *SearchSpace) Digest() SearchSpaceDigest {
	digest := SearchSpaceDigest{
		FeatureNames:     []string{},
		Bounds:           [][2]float64{},
		DiscreteChoices:  map[int][]float64{},
		TargetFidelities: map[int]float64{},
	}

	for _, name := range s.names {
		parameter := s.parameters[name]
		if !parameter.IsNumeric() {
			continue
		}

		index := len(digest.FeatureNames)
		switch p := parameter.(type) {
		case *RangeParameter:
			digest.FeatureNames = append(digest.FeatureNames, name)
			digest.Bounds = append(digest.Bounds, [2]float64{p.Lower(), p.Upper()})
			if p.IsFidelity() {
				digest.FidelityFeatures = append(digest.FidelityFeatures, index)
				if target, ok := numericValue(p.TargetValue()); ok {
					digest.TargetFidelities[index] = target
				}
			}
		case *ChoiceParameter:
			choices := numericChoices(p.Values())
			if len(choices) == 0 {
				continue
			}
			digest.FeatureNames = append(digest.FeatureNames, name)
			digest.Bounds = append(digest.Bounds, [2]float64{0, float64(len(choices) - 1)})
			digest.DiscreteChoices[index] = choices
			if p.IsOrdered() {
				digest.OrdinalFeatures = append(digest.OrdinalFeatures, index)
			} else {
				digest.CategoricalFeatures = append(digest.CategoricalFeatures, index)
			}
			if p.IsTask() {
				digest.TaskFeatures = append(digest.TaskFeatures, index)
			}
			if p.IsFidelity() {
				digest.FidelityFeatures = append(digest.FidelityFeatures, index)
				if target, ok := numericValue(p.TargetValue()); ok {
					digest.TargetFidelities[index] = target
				}
			}
		case *FixedParameter:
			value, ok := numericValue(p.Value())
			if !ok {
				continue
			}
			digest.FeatureNames = append(digest.FeatureNames, name)
			digest.Bounds = append(digest.Bounds, [2]float64{value, value})
		}
	}

	return digest
}

func numericChoices(values []any) []float64 {
	choices := make([]float64, 0, len(values))
	for _, value := range values {
		f, ok := numericValue(value)
		if !ok {
			return nil
		}
		choices = append(choices, f)
	}
	return choices
}
