//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/bills"
	"gitlab.com/yelinaung/billed/internal/bot"
	"gitlab.com/yelinaung/billed/internal/models"
)

func main() {
	rows := []bills.Row{
		{Bill: models.Bill{Type: "Transports", Amount: decimal.NewFromFloat(150.50)}},
		{Bill: models.Bill{Type: "Restaurants et bars", Amount: decimal.NewFromFloat(130.50)}},
		{Bill: models.Bill{Type: "Hôtel et logement", Amount: decimal.NewFromFloat(320.00)}},
		{Bill: models.Bill{Type: "Services en ligne", Amount: decimal.NewFromFloat(25.00)}},
		{Bill: models.Bill{Type: "Fournitures de bureau", Amount: decimal.NewFromFloat(42.00)}},
	}

	chartData, err := bot.GenerateBillsChart(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example bills breakdown chart")
}
