package main

import (
	"context"
	"fmt"

	"github.com/fenwick-labs/goliquid/pkg/liquid"
)

func main() {
	fmt.Println("goliquid")

	tmpl, err := liquid.Parse("Hello {{ name | capitalize }}!")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	out, err := tmpl.Render(context.Background(), &liquid.Options{}, liquid.RenderRequest{
		Model: map[string]interface{}{"name": "world"},
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(out)
}
