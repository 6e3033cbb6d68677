package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/example/schemaflow/internal/schema"
)

func main() {
	var (
		root = flag.String("root", ".", "Root directory to scan for models.go files")
	)
	flag.Parse()

	sql, err := schema.GenerateSQL(*root)
	if err != nil {
		log.Fatalf("Failed to generate migrations: %v", err)
	}

	if sql == "" {
		log.Printf("No model structs found under %s", *root)
		return
	}

	fmt.Println(sql)
}
