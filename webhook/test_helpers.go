package webhook

import "github.com/stretchr/testify/mock"

// MatchSubscription creates a custom matcher for subscription arguments in mocks
func MatchSubscription(matcher func(Subscription) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchDeliveries creates a custom matcher for delivery batches in mocks
func MatchDeliveries(matcher func([]Delivery) bool) interface{} {
	return mock.MatchedBy(matcher)
}
