package lib_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/bootr/pkg/lib"
)

// This example shows how to create a client against a temporary boot history
// database, the same setup is useful for tests.
func Example_testing() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "bootr-example-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "bootr.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	boots, err := client.ListBoots(ctx)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Recorded boots: %d\n", len(boots))

	// Output:
	// Recorded boots: 0
}

// This example writes the current environment to a snapshot artifact and
// reads it back.
func Example_snapshot() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "bootr-example-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "bootr.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	os.Setenv("BOOTR_EXAMPLE_VAR", "captured")

	path, err := client.Snapshot(filepath.Join(dir, "customer_env.json"))
	if err != nil {
		panic(err)
	}

	env, err := client.ReadSnapshot(path)
	if err != nil {
		panic(err)
	}

	fmt.Printf("BOOTR_EXAMPLE_VAR=%s\n", env["BOOTR_EXAMPLE_VAR"])

	// Output:
	// BOOTR_EXAMPLE_VAR=captured
}
