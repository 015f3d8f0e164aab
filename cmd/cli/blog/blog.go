package blog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tokeley/researchlog/cmd/cli/client"
	"github.com/tokeley/researchlog/cmd/cli/config"
	"github.com/tokeley/researchlog/cmd/cli/output"
	"github.com/tokeley/researchlog/internal/models"
)

// ==========================
// Init Blog
// ==========================
func InitBlog(rootCmd *cobra.Command) {
	blogCmd := &cobra.Command{
		Use:   "blog",
		Short: "Read log posts",
	}

	blogCmd.AddCommand(
		listPostsCmd(),
		getPostCmd(),
		tagsCmd(),
	)

	rootCmd.AddCommand(blogCmd)
}

// ==========================
// LIST
// ==========================
func listPostsCmd() *cobra.Command {
	var tag, query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts (drafts included when logged in as admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if tag != "" {
				params.Set("tag", tag)
			}
			if query != "" {
				params.Set("q", query)
			}
			path := "/blog"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			_, tokenErr := config.LoadToken()
			var posts []models.Post
			if err := client.Call("GET", path, nil, &posts, tokenErr == nil); err != nil {
				return err
			}

			if asJSON {
				return output.PrintJSON(posts)
			}
			rows := make([][]interface{}, 0, len(posts))
			for _, p := range posts {
				rows = append(rows, []interface{}{
					p.ID, output.Truncate(p.Title, 40), p.Status, strings.Join(p.Tags, ","), p.CreatedAt.Format("2006-01-02"),
				})
			}
			output.RenderTable([]string{"ID", "Title", "Status", "Tags", "Created"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only posts with this tag")
	cmd.Flags().StringVar(&query, "q", "", "search title, caption and tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

// ==========================
// GET
// ==========================
func getPostCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.CheckID(args[0]); err != nil {
				return err
			}
			var p models.Post
			if err := client.Call("GET", "/blog/"+args[0], nil, &p, false); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(p)
			}

			fmt.Printf("%s  [%s]\n", p.Title, p.Status)
			if p.Caption != "" {
				fmt.Println(p.Caption)
			}
			fmt.Printf("by %s on %s", p.Author.Username, p.CreatedAt.Format("2006-01-02"))
			if len(p.Tags) > 0 {
				fmt.Printf("  #%s", strings.Join(p.Tags, " #"))
			}
			fmt.Print("\n\n")
			fmt.Println(p.Content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags used by posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tags []string
			if err := client.Call("GET", "/blog/tags", nil, &tags, false); err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Println(t)
			}
			return nil
		},
	}
}
