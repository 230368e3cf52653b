package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/min_commerce/internal/cart"
	"github.com/Skotchmaster/min_commerce/internal/format"
	"github.com/Skotchmaster/min_commerce/internal/service/order"
	"github.com/Skotchmaster/min_commerce/pkg/shopclient"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "storefront API base URL")
	cartPath := flag.String("cart", "cart.json", "path of the saved cart")
	redisAddr := flag.String("redis", "", "redis address, keeps the cart in redis instead of a local file")
	name := flag.String("name", "", "customer name")
	email := flag.String("email", "", "customer email")
	accessToken := flag.String("token", "", "access token for the session cookie")
	flag.Parse()

	if *name == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "both -name and -email are required")
		os.Exit(2)
	}

	ctx := context.Background()

	var storage cart.Storage = cart.FileStorage{Path: *cartPath}
	if *redisAddr != "" {
		storage = cart.NewRedisStorage(redis.NewClient(&redis.Options{Addr: *redisAddr}), *email)
	}
	store := cart.NewStore(ctx, storage, nil)

	lines := store.Items()
	if len(lines) == 0 {
		fmt.Println("cart is empty, nothing to order")
		return
	}

	items := make([]order.Line, 0, len(lines))
	for _, l := range lines {
		fmt.Printf("%dx %-30s %s\n", l.Quantity, l.Product.Name, format.Price(l.Product.Price*float64(l.Quantity)))
		items = append(items, order.Line{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	fmt.Printf("total: %s\n", format.Price(store.TotalPrice()))

	client := shopclient.NewClient(*apiURL)
	if *accessToken != "" {
		client.SetAccessToken(*accessToken)
	}

	created, err := client.PlaceOrder(ctx, order.PlaceRequest{
		CustomerName:  *name,
		CustomerEmail: *email,
		Items:         items,
		Total:         store.TotalPrice(),
	})
	if err != nil {
		log.Fatalf("order failed: %v", err)
	}

	store.Clear(ctx)
	fmt.Printf("order %d placed, total %s\n", created.ID, format.Price(created.Total))
}
