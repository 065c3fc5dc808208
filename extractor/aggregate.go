package extractor

import (
	"sort"
	"strings"
)

// Report is the aggregated entity table exposed to callers: one record per
// (class, case-folded entity) pair, sorted by mention count.
type Report struct {
	Records []AggregateRecord `json:"records"`
}

type entityKey struct {
	class string
	text  string
}

// Aggregate cleans every merged mention, drops the invalid ones and folds the
// rest into a count-weighted, case-insensitive table. The most frequent
// casing wins; ties go to the casing seen first, so identical input always
// produces identical output. An empty mention list yields an empty report.
func Aggregate(mentions []MergedMention, registry *Registry) *Report {
	if registry == nil {
		registry = DefaultRegistry()
	}

	// Pass 1: count exact (class, cleaned text) pairs, preserving casing and
	// first-seen order.
	exactCounts := make(map[entityKey]int)
	exactOrder := make([]entityKey, 0, len(mentions))
	for _, m := range mentions {
		if m.EntityClass == "" {
			continue
		}
		cleaned := CleanEntityText(m.Text, m.EntityClass)
		if !IsValidEntity(cleaned) {
			continue
		}
		key := entityKey{class: m.EntityClass, text: cleaned}
		if _, seen := exactCounts[key]; !seen {
			exactOrder = append(exactOrder, key)
		}
		exactCounts[key]++
	}

	// Pass 2: fold casings together; the variant with the highest exact count
	// becomes canonical, first-seen breaking ties.
	totals := make(map[entityKey]int)
	canonical := make(map[entityKey]string)
	foldOrder := make([]entityKey, 0, len(exactOrder))
	for _, key := range exactOrder {
		folded := entityKey{class: key.class, text: strings.ToLower(key.text)}
		if _, seen := totals[folded]; !seen {
			foldOrder = append(foldOrder, folded)
		}
		totals[folded] += exactCounts[key]
		best, ok := canonical[folded]
		if !ok || exactCounts[key] > exactCounts[entityKey{class: key.class, text: best}] {
			canonical[folded] = key.text
		}
	}

	records := make([]AggregateRecord, 0, len(foldOrder))
	for _, folded := range foldOrder {
		records = append(records, AggregateRecord{
			EntityClass: folded.class,
			Description: registry.Description(folded.class),
			Entity:      canonical[folded],
			Count:       totals[folded],
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		if records[i].EntityClass != records[j].EntityClass {
			return records[i].EntityClass < records[j].EntityClass
		}
		return strings.ToLower(records[i].Entity) < strings.ToLower(records[j].Entity)
	})
	return &Report{Records: records}
}

// Filter returns the records whose class, description or entity text contains
// the query, case-insensitively. An empty query returns the report unchanged.
func (r *Report) Filter(query string) *Report {
	query = strings.TrimSpace(query)
	if query == "" {
		return r
	}
	query = strings.ToLower(query)
	out := make([]AggregateRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if strings.Contains(strings.ToLower(rec.EntityClass), query) ||
			strings.Contains(strings.ToLower(rec.Description), query) ||
			strings.Contains(strings.ToLower(rec.Entity), query) {
			out = append(out, rec)
		}
	}
	return &Report{Records: out}
}

// Stats derives the summary counters shown above the report table.
func (r *Report) Stats() Summary {
	classes := make(map[string]struct{})
	total := 0
	for _, rec := range r.Records {
		classes[rec.EntityClass] = struct{}{}
		total += rec.Count
	}
	return Summary{
		UniqueClasses:  len(classes),
		UniqueEntities: len(r.Records),
		TotalMentions:  total,
	}
}
