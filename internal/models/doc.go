// Package models defines the core domain models for the shared-expense ledger.
//
// # Models
//
//   - User: a person who can belong to groups
//   - Group: a set of members sharing expenses, with running aggregates
//   - Membership: links a user to a group (the creator is the admin)
//   - Expense: an amount paid by one member and split evenly across the group
//   - ExpenseParticipant: a payment receipt recorded against an expense
//   - Debt: a directed net obligation between two members of a group
//   - Settlement: an audit row written when a debt is (partially) repaid
//
// # Design Principles
//
// 1. **Plain values**: models carry no behavior and no storage handles
// 2. **Decimal money**: every amount is a decimal.Decimal, never a float
// 3. **Avoid circular references**: use ID strings instead of pointers for relationships
// 4. **Composites are explicit**: GroupDetail and ExpenseDetail are returned fully populated
//    by the store instead of being lazily loaded
package models
