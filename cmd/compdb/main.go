// Compdb reduces a compilation database to one compile command per source file.
package main

import "github.com/albertocavalcante/compdb/cmd/compdb/internal/cli"

func main() {
	cli.Execute()
}
