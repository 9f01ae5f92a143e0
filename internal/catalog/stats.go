package catalog

import "tscat/internal/domain"

type Counts struct {
	Messages   int `json:"messages"`
	Finished   int `json:"finished"`
	Unfinished int `json:"unfinished"`
	Obsolete   int `json:"obsolete"`
	Vanished   int `json:"vanished"`
}

// Completion is the share of live messages (not obsolete or vanished) that
// are finished, in percent. An empty catalog is complete.
func (c Counts) Completion() float64 {
	live := c.Messages - c.Obsolete - c.Vanished
	if live <= 0 {
		return 100
	}
	return float64(c.Finished) * 100 / float64(live)
}

func (c *Counts) add(m *domain.Message) {
	c.Messages++
	switch m.Type {
	case domain.TypeFinished:
		c.Finished++
	case domain.TypeUnfinished:
		c.Unfinished++
	case domain.TypeObsolete:
		c.Obsolete++
	case domain.TypeVanished:
		c.Vanished++
	}
}

type ContextStats struct {
	Name string `json:"name"`
	Counts
}

type Summary struct {
	Total    Counts         `json:"total"`
	Contexts []ContextStats `json:"contexts"`
}

// Summarize counts messages per status for every context, in document order.
func Summarize(cat *domain.Catalog) Summary {
	s := Summary{Contexts: make([]ContextStats, 0, len(cat.Contexts))}
	for _, ctx := range cat.Contexts {
		cs := ContextStats{Name: ctx.Name}
		for _, m := range ctx.Messages {
			cs.add(m)
			s.Total.add(m)
		}
		s.Contexts = append(s.Contexts, cs)
	}
	return s
}
