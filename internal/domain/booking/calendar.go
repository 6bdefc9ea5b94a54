package booking

import (
	"sort"
	"time"

	"github.com/dardif/lodging-api/internal/timezone"
)

// ======================================================
// Calendário de disponibilidade
// ======================================================

// Calendar é o conjunto de dias bloqueados de um apartamento.
// Tipo puro: nenhuma operação faz I/O.
type Calendar map[time.Time]struct{}

func NewCalendar(dates ...time.Time) Calendar {
	c := make(Calendar, len(dates))
	c.Add(dates...)
	return c
}

func (c Calendar) Contains(date time.Time) bool {
	_, ok := c[timezone.Day(date)]
	return ok
}

// Add é união de conjuntos: idempotente.
func (c Calendar) Add(dates ...time.Time) {
	for _, d := range dates {
		c[timezone.Day(d)] = struct{}{}
	}
}

// Remove é diferença de conjuntos: remover dia ausente é no-op.
func (c Calendar) Remove(dates ...time.Time) {
	for _, d := range dates {
		delete(c, timezone.Day(d))
	}
}

// Overlaps devolve o subconjunto dos dias pedidos que já estão
// bloqueados, em ordem crescente.
func (c Calendar) Overlaps(dates []time.Time) []time.Time {
	var out []time.Time
	for _, d := range dates {
		if c.Contains(d) {
			out = append(out, timezone.Day(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (c Calendar) Len() int {
	return len(c)
}

func (c Calendar) Dates() []time.Time {
	out := make([]time.Time, 0, len(c))
	for d := range c {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
