package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vibecommerce/storefront/internal/catalog"
)

var (
	ErrEmptyMessage  = errors.New("message is required")
	ErrNotConfigured = errors.New("ai assistant is not configured")
)

// CatalogLister provides the full catalog used as prompt context.
type CatalogLister interface {
	GetAllProducts(ctx context.Context) ([]*catalog.Product, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProductRef points at a catalog product the reply mentioned by name.
type ProductRef struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type ChatResult struct {
	Reply    string       `json:"response"`
	Products []ProductRef `json:"products"`
}

type Assistant struct {
	catalog   CatalogLister
	generator TextGenerator
}

// NewAssistant accepts a nil generator; Chat then reports ErrNotConfigured,
// mirroring a deployment without an API key.
func NewAssistant(catalogLister CatalogLister, generator TextGenerator) *Assistant {
	return &Assistant{
		catalog:   catalogLister,
		generator: generator,
	}
}

// Chat answers a shopping question grounded in the current catalog and
// returns any catalog products the reply mentions by name.
func (a *Assistant) Chat(ctx context.Context, message string, history []Message) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if a.generator == nil {
		return nil, ErrNotConfigured
	}

	products, err := a.catalog.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog for prompt: %w", err)
	}

	reply, err := a.generator.GenerateContent(ctx, buildPrompt(products, history, message))
	if err != nil {
		return nil, err
	}

	return &ChatResult{
		Reply:    reply,
		Products: mentionedProducts(reply, products),
	}, nil
}

func buildPrompt(products []*catalog.Product, history []Message, message string) string {
	var b strings.Builder

	b.WriteString("You are a helpful AI shopping assistant for Vibe Commerce, an e-commerce store. ")
	b.WriteString("Your job is to help customers find products based on their requirements.\n\n")

	b.WriteString("Available Products in our catalog:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (Category: %s, Price: $%.2f, Stock: %d)\n", p.Name, p.Category, p.Price, p.Stock)
	}

	b.WriteString("\nPrevious conversation:\n")
	for _, msg := range history {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}

	fmt.Fprintf(&b, "\nCustomer's current question: %s\n\n", message)

	b.WriteString(`Instructions:
1. Understand the customer's requirements (budget, category, brand preferences, features, etc.)
2. Recommend 1-3 most suitable products from the catalog
3. For each recommendation, explain why it matches their needs
4. Include the product name, price, and category
5. Be friendly, concise, and helpful
6. If no products match, suggest the closest alternatives
7. Format product suggestions clearly with product names that can be linked

Respond naturally and helpfully:`)

	return b.String()
}

func mentionedProducts(reply string, products []*catalog.Product) []ProductRef {
	lower := strings.ToLower(reply)

	refs := []ProductRef{}
	for _, p := range products {
		if strings.Contains(lower, strings.ToLower(p.Name)) {
			refs = append(refs, ProductRef{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price,
				Category: p.Category,
			})
		}
	}
	return refs
}
