// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import (
	"context"
	"fmt"
)

func ExampleNested() {
	defaults := DotMap{
		"db": map[string]any{
			"host": "localhost",
			"port": 5432,
		},
	}
	overrides := Map{
		"db.host": "db.internal",
	}

	n := NewNested(
		Map{"env": "prod"},
		Named("overrides", overrides),
		Named("defaults", defaults),
		HasCache(10),
		CheckNestedHas(true),
	)

	ctx := context.Background()
	for _, id := range []string{"env", "db.host", "db.port"} {
		v, err := n.Get(ctx, id)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(id, v)
	}

	_, err := n.Get(ctx, "db.user")
	fmt.Println(err)

	// Output: env prod
	// db.host db.internal
	// db.port 5432
	// no entry found for 'db.user'
}

func ExampleDecode() {
	c := DotMap{
		"server": map[string]any{
			"addr":    ":8080",
			"timeout": "5s",
		},
	}

	var cfg struct {
		Addr    string `config:"addr"`
		Timeout string `config:"timeout"`
	}
	err := Decode(context.Background(), c, "server", &cfg)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.Addr, cfg.Timeout)
	// Output: :8080 5s
}
