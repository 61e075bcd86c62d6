// Package services provides stateless domain services shared by the change handlers
// and the use cases of the dispatch marketplace.
//
// The package includes:
//   - FeeSchedule: the two-phase commission and driver earning arithmetic
//   - FailurePolicy: how a guard behaves when it cannot complete its check
//   - ExclusivityPolicy: whether a driver change on a locked order is authorized
//   - NotificationPlan: which parties are told about an order transition
//
// Nothing here touches storage; callers load the aggregates and persist the outcome.
package services
