package main

import (
	"fmt"
	"os"

	"github.com/tokeley/researchlog/cmd/cli/auth"
	"github.com/tokeley/researchlog/cmd/cli/blog"
	"github.com/tokeley/researchlog/cmd/cli/papers"
	"github.com/tokeley/researchlog/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	blog.InitBlog(rootCmd)
	papers.InitPapers(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
