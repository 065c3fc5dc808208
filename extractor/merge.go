package extractor

// mergeGap is the maximum character gap between two same-class spans that are
// still folded into one mention. It tolerates the single separator left
// behind when the tokenizer splits one entity across sub-word pieces.
const mergeGap = 3

// MergeAdjacent collapses consecutive predictions of the same class whose
// character spans are adjacent or near-adjacent into single logical mentions.
// Offsets are chunk-relative, so callers must never pass predictions from two
// different chunks in one call. The merge is total over any input: empty
// input yields empty output and no input can fail.
func MergeAdjacent(predictions []RawPrediction) []MergedMention {
	if len(predictions) == 0 {
		return nil
	}

	merged := make([]MergedMention, 0, len(predictions))
	current := mentionFrom(predictions[0])

	for _, next := range predictions[1:] {
		sameClass := next.EntityClass == current.EntityClass
		adjacent := next.Start-current.End <= mergeGap

		if sameClass && adjacent {
			current.Text = current.Text + " " + next.Text
			current.End = next.End
			if next.Confidence < current.Confidence {
				current.Confidence = next.Confidence
			}
			continue
		}
		merged = append(merged, current)
		current = mentionFrom(next)
	}

	return append(merged, current)
}

func mentionFrom(p RawPrediction) MergedMention {
	return MergedMention{
		EntityClass: p.EntityClass,
		Text:        p.Text,
		Confidence:  p.Confidence,
		Start:       p.Start,
		End:         p.End,
	}
}
