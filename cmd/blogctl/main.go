package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"blogclient/internal/api"
	"blogclient/internal/app"
	"blogclient/internal/blog"
	"blogclient/internal/models"
	"blogclient/internal/session"
	"blogclient/internal/token"
)

// blogctl is the terminal front-end over the same stores the web
// client uses. Comparte el token guardado, así que una sesión iniciada
// aquí vale también para el webclient.

func main() {
	cmd := flag.String("cmd", "list", "Command: login|register|logout|whoami|list|search|show|create|update|delete|comment|uncomment|admin-list|admin-delete")
	id := flag.String("id", "", "Post id (show/update/delete/comment/uncomment/admin-delete)")
	commentID := flag.String("comment-id", "", "Comment id (uncomment)")
	title := flag.String("title", "", "Post title (create/update)")
	content := flag.String("content", "", "Post or comment body (create/update/comment)")
	query := flag.String("query", "", "Search query (search)")
	email := flag.String("email", "", "Email (login/register)")
	name := flag.String("name", "", "Display name (register)")
	server := flag.String("server", "", "Override API base URL")
	flag.Parse()

	cfg := app.LoadConfig()
	if *server != "" {
		cfg.APIBaseURL = strings.TrimRight(*server, "/")
	}

	tokens, err := token.Open(cfg.TokenPath)
	app.Must(err)
	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, tokens.Token)
	sess := session.NewStore(client, tokens)
	posts := blog.NewStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := run(ctx, *cmd, sess, posts, args{
		id: *id, commentID: *commentID, title: *title, content: *content,
		query: *query, email: *email, name: *name,
	}); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type args struct {
	id, commentID, title, content, query, email, name string
}

func run(ctx context.Context, cmd string, sess *session.Store, posts *blog.Store, a args) error {
	switch cmd {
	case "login":
		u, err := sess.Login(ctx, a.email, promptPassword())
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s <%s> (role %s)\n", u.Name, u.Email, u.Role)

	case "register":
		u, err := sess.Register(ctx, a.name, a.email, promptPassword())
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s <%s>\n", u.Name, u.Email)

	case "logout":
		sess.Logout()
		fmt.Println("Logged out.")

	case "whoami":
		sess.Rehydrate(ctx)
		u, ok := sess.CurrentUser()
		if !ok {
			fmt.Println("anonymous")
			return nil
		}
		fmt.Printf("%s <%s> role=%s\n", u.Name, u.Email, u.Role)

	case "list":
		if err := posts.FetchPosts(ctx); err != nil {
			return err
		}
		printPosts(posts.Posts())

	case "search":
		res, err := posts.SearchPosts(ctx, a.query)
		if err != nil {
			return err
		}
		printPosts(res)

	case "show":
		p, err := posts.GetPost(ctx, a.id)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\nby %s, %s\n\n%s\n", p.Title, p.Author.Name, p.CreatedAt.Format("2006-01-02 15:04"), p.Content)
		for _, c := range p.Comments {
			fmt.Printf("  [%s] %s: %s\n", c.ID, c.Author.Name, c.Content)
		}

	case "create":
		p, err := posts.CreatePost(ctx, a.title, a.content)
		if err != nil {
			return err
		}
		fmt.Println("Created post", p.ID)

	case "update":
		p, err := posts.UpdatePost(ctx, a.id, a.title, a.content)
		if err != nil {
			return err
		}
		fmt.Println("Updated post", p.ID)

	case "delete":
		if err := posts.DeletePost(ctx, a.id); err != nil {
			return err
		}
		fmt.Println("Deleted post", a.id)

	case "comment":
		c, err := posts.AddComment(ctx, a.id, a.content)
		if err != nil {
			return err
		}
		fmt.Println("Added comment", c.ID)

	case "uncomment":
		if err := posts.DeleteComment(ctx, a.id, a.commentID); err != nil {
			return err
		}
		fmt.Println("Deleted comment", a.commentID)

	case "admin-list":
		res, err := posts.AdminPosts(ctx)
		if err != nil {
			return err
		}
		printPosts(res)

	case "admin-delete":
		if err := posts.AdminDeletePost(ctx, a.id); err != nil {
			return err
		}
		fmt.Println("Deleted post", a.id)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printPosts(ps []models.Post) {
	for _, p := range ps {
		fmt.Printf("%s  %-40s  %s (%d comments)\n", p.ID, p.Title, p.Author.Name, len(p.Comments))
	}
	if len(ps) == 0 {
		fmt.Println("(no posts)")
	}
}

// promptPassword lee la contraseña de stdin sin eco especial; para un
// cliente local es suficiente.
func promptPassword() string {
	fmt.Print("Password: ")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}
