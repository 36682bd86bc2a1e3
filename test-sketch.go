// +build ignore

// Quick test to verify sketch detection
package main

import (
	"fmt"
	"os"

	"github.com/devista-consulting/arduino-sketch-vault/internal/sketch"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run test-sketch.go <path>")
		os.Exit(1)
	}

	path := os.Args[1]
	fmt.Printf("Testing sketch detection from: %s\n\n", path)

	sk := sketch.Detect(path)
	if sk == nil {
		fmt.Println("❌ No sketch detected")
		os.Exit(1)
	}

	fmt.Println("✅ Sketch detected!")
	fmt.Printf("   Root:       %s\n", sk.Root)
	fmt.Printf("   Document:   %s\n", sk.DocumentPath)
	fmt.Printf("   Has yaml:   %v\n", sk.HasDocument)

	if sk.HasDocument {
		doc, err := sketch.LoadDocument(sk.DocumentPath)
		if err != nil {
			fmt.Printf("   Parse error: %v\n", err)
			os.Exit(1)
		}
		for _, p := range doc.Profiles() {
			fmt.Printf("   Profile:    %s (%s)\n", p.Name, p.FQBN)
		}
		fmt.Printf("   Default:    %s\n", doc.DefaultProfile())
	}
}
