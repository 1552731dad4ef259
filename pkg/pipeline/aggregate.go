package pipeline

// aggregate folds per-step trust metadata into the pipeline-level
// block. Confidence follows the weakest-link policy: the minimum over
// every executed step that reported one; nil when none did. Skipped
// steps contribute nothing.
func aggregate(steps []StepResult, totalSteps int) Metadata {
	meta := Metadata{
		ConfidenceBreakdown: []ConfidenceEntry{},
		Reasoning:           []ReasoningEntry{},
		Warnings:            []StepWarning{},
		TotalSteps:          totalSteps,
	}

	for _, sr := range steps {
		if sr.Status == StatusSuccess {
			meta.CompletedSteps++
		}
		if sr.Status == StatusSkipped {
			continue
		}
		if sr.Confidence != nil {
			c := *sr.Confidence
			if meta.Confidence == nil || c < *meta.Confidence {
				meta.Confidence = &c
			}
			meta.ConfidenceBreakdown = append(meta.ConfidenceBreakdown, ConfidenceEntry{
				StepIndex:  sr.Index,
				Command:    sr.Command,
				Confidence: c,
				Reasoning:  sr.Reasoning,
			})
		}
		if sr.Reasoning != "" {
			meta.Reasoning = append(meta.Reasoning, ReasoningEntry{
				StepIndex: sr.Index,
				Command:   sr.Command,
				Reasoning: sr.Reasoning,
			})
		}
		for _, w := range sr.Warnings {
			meta.Warnings = append(meta.Warnings, StepWarning{StepIndex: sr.Index, Warning: w})
		}
		for _, s := range sr.Sources {
			meta.Sources = append(meta.Sources, StepSource{StepIndex: sr.Index, Source: s})
		}
		for _, a := range sr.Alternatives {
			meta.Alternatives = append(meta.Alternatives, StepAlternative{StepIndex: sr.Index, Alternative: a})
		}
	}
	return meta
}
