package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/clinic-webhooks/provisioning"
)

/* validate-subscriptions - Standalone CLI tool to validate subscriptions.yaml
 * Usage: go run cmd/validate-subscriptions/main.go [subscriptions.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	file := "subscriptions.yaml"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	fmt.Printf("Validating subscriptions file: %s\n", file)
	fmt.Println(strings.Repeat("-", 50))

	loader := provisioning.NewLoader()
	if err := loader.Load(file); err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	entries := loader.List()
	fmt.Printf("VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d subscription(s):\n", len(entries))

	for i, e := range entries {
		fmt.Printf("\n%d. Subscription: %s\n", i+1, e.Key())
		fmt.Printf("   Target URL:    %s\n", e.TargetURL)
		fmt.Printf("   Events:        %s\n", strings.Join(e.Events, ", "))
		fmt.Printf("   Max Retries:   %d\n", e.MaxRetries)
		fmt.Printf("   Retry Delay:   %ds\n", e.RetryDelaySeconds)
		fmt.Printf("   Active:        %t\n", e.Active)
		if e.Description != "" {
			fmt.Printf("   Description:   %s\n", e.Description)
		}
	}

	fmt.Printf("\nAll subscriptions are valid!\n")
}
