//go:build ignore

// update-version sets the release version in version.json and in the
// version package. Run from the repository root:
//
//	go run scripts/update-version.go 1.2.3
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var semver = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/update-version.go <version>")
		os.Exit(2)
	}
	version := os.Args[1]
	if !semver.MatchString(version) {
		fmt.Fprintln(os.Stderr, "version must be in format X.Y.Z (e.g., 1.0.0)")
		os.Exit(1)
	}

	root, err := os.Getwd()
	if err != nil {
		fail("getting working directory", err)
	}

	data, err := json.MarshalIndent(map[string]string{"version": version}, "", "    ")
	if err != nil {
		fail("encoding version.json", err)
	}
	if err := os.WriteFile(filepath.Join(root, "version.json"), append(data, '\n'), 0644); err != nil {
		fail("writing version.json", err)
	}
	fmt.Println("updated version.json")

	src := filepath.Join(root, "internal", "version", "version.go")
	content, err := os.ReadFile(src)
	if err != nil {
		fail("reading version.go", err)
	}
	re := regexp.MustCompile(`var Version = "[^"]*"`)
	if !re.Match(content) {
		fail("updating version.go", fmt.Errorf("no Version variable in %s", src))
	}
	content = re.ReplaceAll(content, []byte(fmt.Sprintf(`var Version = "%s"`, version)))
	if err := os.WriteFile(src, content, 0644); err != nil {
		fail("writing version.go", err)
	}
	fmt.Println("updated internal/version/version.go")

	fmt.Printf("version set to %s\n", version)
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "error %s: %v\n", what, err)
	os.Exit(1)
}
