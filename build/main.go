package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"

	"github.com/spachava753/jumpstart/internal/registry"
)

func run(a *goyek.A, name string, args ...string) {
	cmd := exec.CommandContext(a.Context(), name, args...)
	cmd.Stdout = a.Output()
	cmd.Stderr = a.Output()
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		run(a, "go", "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run unit tests (integration tests skipped)",
	Action: func(a *goyek.A) {
		run(a, "go", "test", "-short", "./...")
	},
})

var validateRegistry = goyek.Define(goyek.Task{
	Name:  "validate-registry",
	Usage: "Validate every entry under $JUMPSTART_REGISTRY_DIR (default registry)",
	Action: func(a *goyek.A) {
		root := os.Getenv("JUMPSTART_REGISTRY_DIR")
		if root == "" {
			root = "registry"
		}
		_, report, err := registry.Load(a.Context(), root, registry.LoadOptions{})
		if err != nil {
			a.Fatal(err)
		}
		for _, s := range report.Skipped {
			a.Errorf("%s: %v", s.File, s.Err)
		}
		a.Logf("%d jumpstart(s) loaded", report.Loaded)
	},
})

var all = goyek.Define(goyek.Task{
	Name:  "all",
	Usage: "Run vet, test and validate-registry",
	Deps:  goyek.Deps{vet, test, validateRegistry},
})

func main() {
	goyek.SetDefault(all)
	goyek.Main(os.Args[1:])
}
