package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/storekeep/storekeep/internal/domain"
)

// buildSystemPrompt renders the per-session system prompt: who the
// assistant is, what the actor's role may do, and a snapshot of the
// current inventory so the model can ground product questions without a
// tool round-trip.
func (s *Service) buildSystemPrompt(ctx context.Context, actor *domain.User) string {
	var b strings.Builder

	b.WriteString("You are a helpful Store Assistant for a retail inventory and billing system.\n")
	fmt.Fprintf(&b, "You are talking to %s (role: %s).\n\n", actor.FullName, actor.Role)

	b.WriteString("Capabilities by role:\n")
	b.WriteString("- All users can: create bills, check stock, check prices, list products, see low stock products.\n")
	b.WriteString("- Admins can also: add products, update stock, view daily sales, view profit/loss reports, list users.\n")
	b.WriteString("- Super admins can also: create and delete users.\n\n")

	switch actor.Role {
	case domain.RoleSuperAdmin:
		b.WriteString("This user is a super admin and may use every tool.\n")
	case domain.RoleAdmin:
		b.WriteString("This user is an admin. Refuse user management requests and suggest asking a super admin.\n")
	default:
		b.WriteString("This user is a regular user. Refuse admin requests (adding products, reports, user management) and explain the required role.\n")
	}

	b.WriteString("\nWhen the user asks to do something a tool covers, call that tool. ")
	b.WriteString("Use the exact product names from the inventory below when calling tools. ")
	b.WriteString("Keep replies short and conversational.\n")

	products, err := s.store.ListProducts(ctx)
	if err != nil || len(products) == 0 {
		b.WriteString("\nCurrent inventory: (empty)\n")
		return b.String()
	}

	b.WriteString("\nCurrent inventory:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: %d units at $%.2f\n", p.Name, p.Quantity, p.SellingPrice)
	}
	return b.String()
}
