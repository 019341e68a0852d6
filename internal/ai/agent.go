package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-pos-checkout/internal/database"
	"go-pos-checkout/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers back-office questions ("how much did we sell this week?",
// "does Somchai have enough points for a 50 baht discount?") by letting the
// model call into inventory, sales and customer tools.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant for a point-of-sale back office.

	RULES:
	1. UPDATE: If asked to update a product by NAME, do NOT ask for the ID. Instead:
	   - Call 'check_inventory' to find the ID.
	   - Call 'update_product_price' using that ID.
	2. READ: For PRICE, COST, STOCK or DETAILS of a product, call 'check_inventory'
	   and read the JSON. Never claim you cannot get the price.
	3. SALES: For revenue or sale counts, use 'get_sales_report'.
	4. CUSTOMERS: For loyalty balances or purchase history, use 'find_customer'.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Price, Cost, or Stock.",
				},
				{
					Name:        "update_product_price",
					Description: "Update the price of a specific product using its ID",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"product_id": {Type: genai.TypeInteger, Description: "ID of the product"},
							"new_price":  {Type: genai.TypeNumber, Description: "New price"},
						},
						Required: []string{"product_id", "new_price"},
					},
				},
				{
					Name:        "get_sales_report",
					Description: "Get total sales revenue and order count for a date range.",
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
					Name:        "find_customer",
					Description: "Look up a loyalty customer by name or phone number. Returns points balance and purchase totals.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query": {Type: genai.TypeString, Description: "Customer name or phone number"},
						},
						Required: []string{"query"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {

			if funcCall.Name == "check_inventory" {
				var products []models.Product
				database.DB.Find(&products)

				type SimpleProduct struct {
					ID    uint    `json:"id"`
					Name  string  `json:"name"`
					SKU   string  `json:"sku"`
					Stock int     `json:"stock"`
					Price float64 `json:"price"`
					Cost  float64 `json:"cost"`
				}
				var simpleList []SimpleProduct
				for _, p := range products {
					simpleList = append(simpleList, SimpleProduct{
						ID:    p.ID,
						Name:  p.Name,
						SKU:   p.SKU,
						Stock: p.StockQuantity,
						Price: p.Price,
						Cost:  p.CostPrice,
					})
				}

				jsonBytes, _ := json.Marshal(simpleList)

				toolResp := genai.FunctionResponse{
					Name:     "check_inventory",
					Response: map[string]interface{}{"inventory": string(jsonBytes)},
				}

				finalResp, err := session.SendMessage(ctx, toolResp)
				if err != nil {
					return "", err
				}

				return handleRecursiveToolCalls(ctx, session, finalResp), nil
			}

			if funcCall.Name == "update_product_price" {
				return executeUpdatePrice(ctx, session, funcCall), nil
			}

			if funcCall.Name == "get_sales_report" {
				return executeSalesReport(ctx, session, funcCall), nil
			}

			if funcCall.Name == "find_customer" {
				return executeFindCustomer(ctx, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

// --- HELPER FUNCTIONS ---

func handleRecursiveToolCalls(ctx context.Context, session *genai.ChatSession, resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			if funcCall.Name == "update_product_price" {
				return executeUpdatePrice(ctx, session, funcCall)
			}
		}
	}
	return printResponse(resp)
}

func executeUpdatePrice(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	productID := int(args["product_id"].(float64))
	newPrice := args["new_price"].(float64)

	result := database.DB.Model(&models.Product{}).Where("id = ?", productID).Update("price", newPrice)

	msg := "Success"
	if result.RowsAffected == 0 {
		msg = "Product ID not found"
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "update_product_price",
		Response: map[string]interface{}{"status": msg, "new_price": newPrice},
	})
	return printResponse(finalResp)
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	startStr := args["start_date"].(string)
	endStr := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)

	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":     report.TotalRevenue,
			"sales_count": report.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func executeFindCustomer(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	query := funcCall.Args["query"].(string)

	var customers []models.Customer
	database.DB.
		Where("name LIKE ? OR phone LIKE ?", "%"+query+"%", "%"+query+"%").
		Limit(5).
		Find(&customers)

	type SimpleCustomer struct {
		ID        uint    `json:"id"`
		Name      string  `json:"name"`
		Phone     string  `json:"phone"`
		Points    int     `json:"loyalty_points"`
		Spent     float64 `json:"total_spent"`
		Purchases int     `json:"purchase_count"`
	}
	var simpleList []SimpleCustomer
	for _, c := range customers {
		simpleList = append(simpleList, SimpleCustomer{
			ID:        c.ID,
			Name:      c.Name,
			Phone:     c.Phone,
			Points:    c.LoyaltyPoints,
			Spent:     c.TotalSpent,
			Purchases: c.PurchaseCount,
		})
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "find_customer",
		Response: map[string]interface{}{"customers": string(jsonBytes)},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
