package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"keimadura-pos/internal/models"
	"keimadura-pos/internal/services"
	"keimadura-pos/internal/utils"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxToolRounds bounds how many rounds of function calls one question may trigger.
const maxToolRounds = 5

const movementLimit = 20

// Agent answers stock and sales questions with Gemini, reading the POS through
// read-only tools.
type Agent struct {
	client *genai.Client
	model  string
	svc    *services.Services
	now    services.Clock
}

func NewAgent(ctx context.Context, apiKey, model string, svc *services.Services, now services.Clock) (*Agent, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Agent{client: client, model: model, svc: svc, now: now}, nil
}

func (a *Agent) Close() error {
	return a.client.Close()
}

var tools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "check_inventory",
				Description: "Get the inventory list. Use this to find ANY product details like ID, Name, Category, Price, Stock or Minimum stock.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"search":   {Type: genai.TypeString, Description: "Optional part of the product name, or its ID"},
						"category": {Type: genai.TypeString, Description: "Optional category (Comidas, Bebidas, ...)"},
					},
				},
			},
			{
				Name:        "list_low_stock",
				Description: "List the products at or below their minimum stock, including the depleted ones.",
			},
			{
				Name:        "get_sales_report",
				Description: "Get total sales revenue and number of sales for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
			{
				Name:        "list_stock_movements",
				Description: "List the most recent stock movements (entries, exits and adjustments).",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"period": {Type: genai.TypeString, Description: "all, today, week, month or year (default today)"},
						"type":   {Type: genai.TypeString, Description: "Optional movement type: in, out or adjust"},
					},
				},
			},
		},
	},
}

func (a *Agent) prompt(userMessage string) string {
	today := a.now().Format("2006-01-02")
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the stock assistant of a restaurant POS.
	
	RULES:
	1. READ: If a user asks for PRICE, STOCK, or DETAILS of a product:
	   - You MUST call 'check_inventory' and read the JSON to find the item.
	   - Do NOT ask for the product ID, search by name instead.
	
	2. STOCK ALERTS: For "what is running out" questions, use 'list_low_stock'.
	
	3. SALES: If the user asks for sales/revenue, use 'get_sales_report'.
	
	4. HISTORY: For entries, exits or adjustments of stock, use 'list_stock_movements'.
	
	5. You cannot change data. If asked to, explain that changes are made in the POS screens.
	
	USER: %s`, today, userMessage)
}

// Ask runs one question to completion, answering the model's tool calls until it replies with text.
func (a *Agent) Ask(ctx context.Context, userMessage string) (string, error) {
	model := a.client.GenerativeModel(a.model)
	model.Tools = tools
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.prompt(userMessage)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			replies = append(replies, a.answer(ctx, call))
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

// answer runs one tool call. Tool failures go back to the model as data, not as errors.
func (a *Agent) answer(ctx context.Context, call genai.FunctionCall) genai.FunctionResponse {
	result, err := a.runTool(ctx, call.Name, call.Args)
	if err != nil {
		return genai.FunctionResponse{Name: call.Name, Response: map[string]any{"error": err.Error()}}
	}
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return genai.FunctionResponse{Name: call.Name, Response: map[string]any{"error": "failed to encode result"}}
	}
	return genai.FunctionResponse{Name: call.Name, Response: map[string]any{"result": string(jsonBytes)}}
}

type simpleProduct struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Minimum  int    `json:"minimum_stock"`
	Price    string `json:"price"`
}

func simplify(products []models.Product) []simpleProduct {
	list := make([]simpleProduct, 0, len(products))
	for _, p := range products {
		list = append(list, simpleProduct{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Stock:    p.StockQuantity,
			Minimum:  p.MinimumStock,
			Price:    p.Price.StringFixed(2),
		})
	}
	return list
}

func (a *Agent) runTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "check_inventory":
		products, err := a.svc.Catalog.List(ctx, services.ProductFilter{
			Search:   argString(args, "search"),
			Category: argString(args, "category"),
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"inventory": simplify(products)}, nil

	case "list_low_stock":
		products, err := a.svc.Catalog.List(ctx, services.ProductFilter{})
		if err != nil {
			return nil, err
		}
		var low []models.Product
		for _, p := range products {
			if p.StockQuantity <= p.MinimumStock {
				low = append(low, p)
			}
		}
		return map[string]any{"low_stock": simplify(low)}, nil

	case "get_sales_report":
		loc := a.now().Location()
		start, err := utils.ParseFlexibleDate(argString(args, "start_date"), loc)
		if err != nil {
			return nil, errors.New("dates must be in YYYY-MM-DD format")
		}
		end, err := utils.ParseFlexibleDate(argString(args, "end_date"), loc)
		if err != nil {
			return nil, errors.New("dates must be in YYYY-MM-DD format")
		}
		report, err := a.svc.Reports.Summary(ctx, utils.StartOfDay(start), utils.EndOfDay(end))
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"revenue":     report.TotalRevenue.StringFixed(2),
			"sales_count": report.TotalCount,
		}, nil

	case "list_stock_movements":
		period, err := services.ParsePeriod(argString(args, "period"), services.PeriodToday)
		if err != nil {
			return nil, err
		}
		movements, err := a.svc.Stock.ListMovements(ctx, period, argString(args, "type"))
		if err != nil {
			return nil, err
		}
		if len(movements) > movementLimit {
			movements = movements[:movementLimit]
		}
		type simpleMovement struct {
			Product    string    `json:"product"`
			Type       string    `json:"type"`
			Quantity   int       `json:"quantity"`
			StockAfter int       `json:"stock_after"`
			Reason     string    `json:"reason"`
			By         string    `json:"by"`
			At         time.Time `json:"at"`
		}
		list := make([]simpleMovement, 0, len(movements))
		for _, m := range movements {
			list = append(list, simpleMovement{m.ProductName, m.Type, m.Quantity, m.StockAfter, m.Reason, m.Actor, m.OccurredAt})
		}
		return map[string]any{"movements": list}, nil
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, funcCall)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I could not find an answer."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
