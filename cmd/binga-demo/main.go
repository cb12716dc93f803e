// binga-demo exercises the client against the Binga sandbox. Credentials
// come from BINGA_* environment variables (or a .env file); with none set it
// runs against the published dev sandbox.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/moudarir/binga"
)

func main() {
	op := flag.String("op", "merchant", "operation: get, merchant, store, pay, book")
	code := flag.String("code", "", "order code for -op get")
	amount := flag.Float64("amount", 10, "charge amount for -op pay/book")
	email := flag.String("email", "demo@binga.ma", "buyer email for -op pay/book")
	page := flag.Int("page", 1, "listing page")
	limit := flag.Int("limit", 20, "listing page size")
	flag.Parse()

	client, err := binga.NewFromEnv()
	if err != nil {
		slog.Error("client setup failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch *op {
	case "get":
		if *code == "" {
			slog.Error("-op get requires -code")
			os.Exit(2)
		}
		order, err := client.Order(ctx, *code)
		exitOn(err)
		printOrder(order)

	case "merchant":
		orders, err := client.MerchantOrders(ctx, binga.ListOptions{Page: *page, Limit: *limit})
		exitOn(err)
		printOrders(orders)

	case "store":
		orders, err := client.StoreOrders(ctx, binga.ListOptions{Page: *page, Limit: *limit})
		exitOn(err)
		printOrders(orders)

	case "pay", "book":
		req := binga.ChargeRequest{
			Amount:     *amount,
			ExternalID: uuid.NewString(),
			BuyerEmail: *email,
		}
		var order *binga.Order
		var err error
		if *op == "pay" {
			order, err = client.Pay(ctx, req)
		} else {
			order, err = client.Book(ctx, req)
		}
		exitOn(err)
		printOrder(order)

	default:
		slog.Error("unknown operation", "op", *op)
		os.Exit(2)
	}
}

func exitOn(err error) {
	if err == nil {
		return
	}
	if ge, ok := binga.IsGatewayError(err); ok {
		slog.Error("gateway refused the call", "code", ge.Code, "message", ge.Message)
	} else {
		slog.Error("call failed", "error", err)
	}
	os.Exit(1)
}

func printOrder(o *binga.Order) {
	fmt.Printf("order %s (external %s): status=%s amount=%.2f expires=%s\n",
		o.Code(), o.ExternalID(), o.Status(), o.Amount(),
		o.ExpirationDate().Format(time.RFC3339))
	if o.PayURL() != "" {
		fmt.Printf("  pay url: %s\n", o.PayURL())
	}
}

func printOrders(orders []*binga.Order) {
	if len(orders) == 0 {
		fmt.Println("no orders")
		return
	}
	for _, o := range orders {
		printOrder(o)
	}
}
