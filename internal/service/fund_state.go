package service

import "github.com/socialboost/panel/internal/domain"

// Fund transfer requests move exactly once: Pending is the only state with
// outgoing edges, both decisions are terminal.
var fundTransitions = map[string]map[string]struct{}{
	domain.FundStatusPending: {
		domain.FundStatusApproved: {},
		domain.FundStatusRejected: {},
	},
	domain.FundStatusApproved: {},
	domain.FundStatusRejected: {},
}

func canDecideFund(current, next string) bool {
	nextStates, ok := fundTransitions[current]
	if !ok {
		return false
	}
	_, ok = nextStates[next]
	return ok
}
