package papers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tokeley/researchlog/cmd/cli/client"
	"github.com/tokeley/researchlog/cmd/cli/output"
	"github.com/tokeley/researchlog/internal/models"
)

// ==========================
// Init Papers
// ==========================
func InitPapers(rootCmd *cobra.Command) {
	papersCmd := &cobra.Command{
		Use:   "papers",
		Short: "Browse and curate the bibliography",
	}

	papersCmd.AddCommand(
		listPapersCmd(),
		getPaperCmd(),
		addPaperCmd(),
		toggleReadCmd(),
		notesCmd(),
	)

	rootCmd.AddCommand(papersCmd)
}

// ==========================
// LIST
// ==========================
func listPapersCmd() *cobra.Command {
	var tag, query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List papers",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if tag != "" {
				params.Set("tag", tag)
			}
			if query != "" {
				params.Set("q", query)
			}
			path := "/papers"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var papers []models.Paper
			if err := client.Call("GET", path, nil, &papers, false); err != nil {
				return err
			}

			if asJSON {
				return output.PrintJSON(papers)
			}
			rows := make([][]interface{}, 0, len(papers))
			for _, p := range papers {
				rows = append(rows, []interface{}{
					p.ID, output.Truncate(p.Title, 40), output.Truncate(strings.Join(p.Authors, ", "), 30), p.Year, readMark(p.IsRead),
				})
			}
			output.RenderTable([]string{"ID", "Title", "Authors", "Year", "Read"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only papers with this tag")
	cmd.Flags().StringVar(&query, "q", "", "search title, abstract, authors and tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

// ==========================
// GET
// ==========================
func getPaperCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.CheckID(args[0]); err != nil {
				return err
			}
			var p models.Paper
			if err := client.Call("GET", "/papers/"+args[0], nil, &p, false); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(p)
			}
			printPaper(p)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

// ==========================
// ADD
// ==========================
func addPaperCmd() *cobra.Command {
	var title, abstract, link string
	var authors, tags []string
	var year int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a paper (requires login)",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"title":    title,
				"authors":  authors,
				"year":     year,
				"abstract": abstract,
				"url":      link,
				"tags":     tags,
			}
			var p models.Paper
			if err := client.Call("POST", "/papers", payload, &p, true); err != nil {
				return err
			}
			fmt.Printf("Added %s (%s)\n", p.Title, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "paper title")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "author (repeatable)")
	cmd.Flags().IntVar(&year, "year", 0, "publication year")
	cmd.Flags().StringVar(&abstract, "abstract", "", "abstract")
	cmd.Flags().StringVar(&link, "url", "", "link to the paper")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

// ==========================
// TOGGLE READ
// ==========================
func toggleReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-read [id]",
		Short: "Flip the read flag of a paper (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.CheckID(args[0]); err != nil {
				return err
			}
			var p models.Paper
			if err := client.Call("PATCH", "/papers/"+args[0]+"/toggle-read", nil, &p, true); err != nil {
				return err
			}
			if p.IsRead {
				fmt.Printf("Marked %q as read\n", p.Title)
			} else {
				fmt.Printf("Marked %q as unread\n", p.Title)
			}
			return nil
		},
	}
}

// ==========================
// NOTES
// ==========================
func notesCmd() *cobra.Command {
	var clearNotes bool

	cmd := &cobra.Command{
		Use:   "notes [id] [text]",
		Short: "Replace the notes of a paper (requires login)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.CheckID(args[0]); err != nil {
				return err
			}
			if len(args) < 2 && !clearNotes {
				return fmt.Errorf("notes text is required (or pass --clear)")
			}
			notes := ""
			if !clearNotes {
				notes = args[1]
			}

			var p models.Paper
			if err := client.Call("PUT", "/papers/"+args[0]+"/notes", map[string]string{"notes": notes}, &p, true); err != nil {
				return err
			}
			fmt.Printf("Notes updated for %q\n", p.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearNotes, "clear", false, "remove the notes")
	return cmd
}

func readMark(read bool) string {
	if read {
		return "yes"
	}
	return ""
}

func printPaper(p models.Paper) {
	fmt.Printf("%s (%d)\n", p.Title, p.Year)
	fmt.Println(strings.Join(p.Authors, ", "))
	if p.URL != "" {
		fmt.Println(p.URL)
	}
	fmt.Printf("read: %t", p.IsRead)
	if len(p.Tags) > 0 {
		fmt.Printf("  #%s", strings.Join(p.Tags, " #"))
	}
	fmt.Println()
	if p.Abstract != "" {
		fmt.Printf("\n%s\n", p.Abstract)
	}
	if p.Notes != "" {
		fmt.Printf("\nNotes:\n%s\n", p.Notes)
	}
}
