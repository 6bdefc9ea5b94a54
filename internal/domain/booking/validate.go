package booking

import (
	"sort"
	"time"

	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/timezone"
)

// ======================================================
// Validação de reserva
// ======================================================

// Validate aplica as regras na ordem; a primeira falha decide o erro
// que o cliente recebe:
//
//  1. conjunto não vazio
//  2. nenhum dia no passado (hoje ainda pode)
//  3. sem dias repetidos no pedido
//  4. sem interseção com o calendário do apartamento
//
// Devolve os dias truncados e ordenados. Conflito rejeita o pedido
// inteiro, nunca reserva o subconjunto livre.
func Validate(requested []time.Time, cal Calendar, now time.Time) ([]time.Time, error) {
	if len(requested) == 0 {
		return nil, httperr.ErrBusiness(httperr.CodeEmptyRequest)
	}

	today := timezone.Day(now)

	days := make([]time.Time, 0, len(requested))
	for _, d := range requested {
		day := timezone.Day(d)
		if day.Before(today) {
			return nil, httperr.ErrBusiness(httperr.CodePastDate)
		}
		days = append(days, day)
	}

	seen := make(map[time.Time]struct{}, len(days))
	for _, day := range days {
		if _, dup := seen[day]; dup {
			return nil, httperr.ErrBusiness(httperr.CodeDuplicateDate)
		}
		seen[day] = struct{}{}
	}

	if len(cal.Overlaps(days)) > 0 {
		return nil, httperr.ErrBusiness(httperr.CodeDateConflict)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}
