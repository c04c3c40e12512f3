package repositories

import (
	"context"
	"fmt"
)

// TicketCategory selects the numbering band a ticket is issued from, so a
// ticket's magnitude alone tells what kind of match it names.
type TicketCategory int

const (
	TicketIndividual TicketCategory = iota
	TicketTeam
	TicketRubber
)

const ticketBandWidth = 10000

func (c TicketCategory) base() int {
	switch c {
	case TicketTeam:
		return 80001
	case TicketRubber:
		return 70001
	default:
		return 90001
	}
}

// TicketSequence issues globally ordered match tickets. Next must be called
// inside the transaction that inserts the match so two concurrent draws
// cannot be handed the same number.
type TicketSequence interface {
	Next(ctx context.Context, exec SQLExecutor, category TicketCategory) (int, error)
}

type maxTicketSequence struct{}

func NewTicketSequence() TicketSequence {
	return maxTicketSequence{}
}

func (maxTicketSequence) Next(ctx context.Context, exec SQLExecutor, category TicketCategory) (int, error) {
	base := category.base()
	query := `
		SELECT COALESCE(MAX(match_order), $1 - 1) + 1
		FROM matches WHERE match_order >= $1 AND match_order < $2`

	var next int
	if err := exec.QueryRowContext(ctx, query, base, base+ticketBandWidth).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to issue ticket in band %d: %w", base, err)
	}
	return next, nil
}
