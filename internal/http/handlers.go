package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"blogclient/internal/api"
	"blogclient/internal/app"
	"blogclient/internal/blog"
	"blogclient/internal/guard"
	"blogclient/internal/models"
	"blogclient/internal/session"
	"blogclient/internal/util"
)

// Server is the view layer: it renders what the two stores hold and
// dispatches their operations. Nada autoritativo del servidor se
// renderiza sin pasar por los stores.
type Server struct {
	Session *session.Store
	Blog    *blog.Store
	Cfg     app.Config
	Router  *mux.Router
}

func NewServer(sess *session.Store, posts *blog.Store, cfg app.Config) *Server {
	s := &Server{Session: sess, Blog: posts, Cfg: cfg, Router: mux.NewRouter()}

	fs := http.FileServer(http.Dir("web/static"))
	s.Router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))

	r := s.Router
	r.HandleFunc("/", s.guarded(guard.Public, s.handleIndex)).Methods(http.MethodGet)
	r.HandleFunc("/login", s.guarded(guard.Public, s.handleLogin)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/register", s.guarded(guard.Public, s.handleRegister)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/post/{id}", s.guarded(guard.Public, s.handlePostDetail)).Methods(http.MethodGet)
	r.HandleFunc("/post/{id}/comments", s.guarded(guard.Authenticated, s.handleCommentCreate)).Methods(http.MethodPost)
	r.HandleFunc("/post/{id}/comments/{cid}/delete", s.guarded(guard.Authenticated, s.handleCommentDelete)).Methods(http.MethodPost)
	r.HandleFunc("/post/{id}/delete", s.guarded(guard.Authenticated, s.handlePostDelete)).Methods(http.MethodPost)

	r.HandleFunc("/dashboard", s.guarded(guard.Authenticated, s.handleDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/profile", s.guarded(guard.Authenticated, s.handleProfile)).Methods(http.MethodGet)

	r.HandleFunc("/admin", s.guarded(guard.AdminRole, s.handleAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/admin/posts/{id}/delete", s.guarded(guard.AdminRole, s.handleAdminDelete)).Methods(http.MethodPost)
	r.HandleFunc("/create-post", s.guarded(guard.AdminRole, s.handleCreatePost)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/edit-post/{id}", s.guarded(guard.AdminRole, s.handleEditPost)).Methods(http.MethodGet, http.MethodPost)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.Router.ServeHTTP(w, r) }

// ctx acota cada carga de página; el timeout viene de la config.
func (s *Server) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.Cfg.RequestTimeout)
}

type pageData struct {
	Title    string
	Flash    string
	FlashOK  bool // true = éxito, false = error
	LoggedIn bool
	IsAdmin  bool
	User     models.User
	Query    string
	Posts    []postVM
	Post     postVM
	Form     formVM
}

type formVM struct {
	ID      string
	Title   string
	Content string
	Name    string
	Email   string
}

type commentVM struct {
	ID        string
	Author    string
	Content   string
	Created   string
	CanDelete bool
}

type postVM struct {
	ID       string
	Title    string
	Content  string
	Author   string
	AuthorID string
	Created  string
	Updated  string
	Comments []commentVM
	CanEdit  bool
}

func (s *Server) viewPost(p models.Post) postVM {
	viewer, logged := s.Session.CurrentUser()
	vm := postVM{
		ID:       p.ID,
		Title:    p.Title,
		Content:  p.Content,
		Author:   p.Author.Name,
		AuthorID: p.Author.ID,
		Created:  p.CreatedAt.Format("2006-01-02 15:04"),
		Updated:  p.UpdatedAt.Format("2006-01-02 15:04"),
		CanEdit:  logged && viewer.ID == p.Author.ID,
	}
	for _, c := range p.Comments {
		vm.Comments = append(vm.Comments, commentVM{
			ID:      c.ID,
			Author:  c.Author.Name,
			Content: c.Content,
			Created: c.CreatedAt.Format("2006-01-02 15:04"),
			// puede borrar el autor del comentario o el autor del post
			CanDelete: logged && (viewer.ID == c.Author.ID || viewer.ID == p.Author.ID),
		})
	}
	return vm
}

// fillSessionMeta añade usuario y flags de rol si hay sesión 👈
func (s *Server) fillSessionMeta(data *pageData) {
	if u, ok := s.Session.CurrentUser(); ok {
		data.LoggedIn = true
		data.IsAdmin = u.IsAdmin()
		data.User = u
	}
}

func flashFrom(r *http.Request, okMsg string, data *pageData) {
	if r.URL.Query().Get("ok") == "1" {
		data.Flash = okMsg
		data.FlashOK = true
	}
	if e := r.URL.Query().Get("err"); e != "" {
		data.Flash = e
		data.FlashOK = false
	}
}

// ------------------------------------------------------------------------------
// ------------HandleIndex: listado y búsqueda-----------------------------------
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	var data pageData
	data.Title = "BlogApp"
	data.Query = strings.TrimSpace(r.URL.Query().Get("search"))

	var posts []models.Post
	var err error
	if data.Query != "" {
		// los resultados vuelven del store además de quedar en la
		// colección; aquí usamos lo devuelto
		posts, err = s.Blog.SearchPosts(ctx, data.Query)
	} else {
		err = s.Blog.FetchPosts(ctx)
		posts = s.Blog.Posts()
	}
	if err != nil {
		// colección previa intacta: se muestra lo que haya con aviso
		data.Flash = "Failed to fetch posts"
		posts = s.Blog.Posts()
	}

	for _, p := range posts {
		data.Posts = append(data.Posts, s.viewPost(p))
	}
	flashFrom(r, "Post created successfully", &data)
	s.fillSessionMeta(&data)
	util.Render(w, "index.html", data)
}

//---------------------------------------------------------------------------------
//------------HandleLogin Function-------------------------------------------------

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		var data pageData
		data.Title = "Login"
		data.Form.Email = r.URL.Query().Get("email")
		flashFrom(r, "Account created, you can sign in now", &data)
		s.fillSessionMeta(&data)
		util.Render(w, "auth_login.html", data)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if _, err := s.Session.Login(ctx, email, password); err != nil {
		http.Redirect(w, r, "/login?err=Invalid+email+or+password&email="+url.QueryEscape(email), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

//---------------------------------------------------------------------------------
//------------HandleRegister Function----------------------------------------------

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		var data pageData
		data.Title = "Register"
		data.Form.Name = r.URL.Query().Get("name")
		data.Form.Email = r.URL.Query().Get("email")
		flashFrom(r, "", &data)
		s.fillSessionMeta(&data)
		util.Render(w, "auth_register.html", data)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if name == "" || email == "" || password == "" {
		http.Redirect(w, r, "/register?err=Missing+fields&name="+url.QueryEscape(name)+"&email="+url.QueryEscape(email), http.StatusSeeOther)
		return
	}

	if _, err := s.Session.Register(ctx, name, email, password); err != nil {
		http.Redirect(w, r, "/register?err=Registration+failed&name="+url.QueryEscape(name)+"&email="+url.QueryEscape(email), http.StatusSeeOther)
		return
	}
	// registro deja sesión iniciada, igual que el cliente original
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Session.Logout()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ------------------------------------------------------------------------------
// ------------HandlePostDetail: lectura por canal lateral------------------------
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	p, err := s.Blog.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Failed to fetch post", http.StatusBadGateway)
		return
	}

	var data pageData
	data.Title = p.Title
	data.Post = s.viewPost(p)
	flashFrom(r, "Saved", &data)
	s.fillSessionMeta(&data)
	util.Render(w, "post_detail.html", data)
}

func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	content := strings.TrimSpace(r.FormValue("content"))

	if _, err := s.Blog.AddComment(ctx, id, content); err != nil {
		http.Redirect(w, r, "/post/"+id+"?err=Failed+to+add+comment", http.StatusSeeOther)
		return
	}
	// la vista de detalle re-consulta GetPost, así que el comentario
	// nuevo aparece aunque el post no esté en la colección
	http.Redirect(w, r, "/post/"+id, http.StatusSeeOther)
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	vars := mux.Vars(r)
	if err := s.Blog.DeleteComment(ctx, vars["id"], vars["cid"]); err != nil {
		http.Redirect(w, r, "/post/"+vars["id"]+"?err=Failed+to+delete+comment", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/post/"+vars["id"], http.StatusSeeOther)
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	// la autoría la comprueba el servidor; aquí solo se dispara
	if err := s.Blog.DeletePost(ctx, id); err != nil {
		http.Redirect(w, r, "/dashboard?err=Failed+to+delete+post", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ------------------------------------------------------------------------------
// ------------HandleDashboard: posts propios-------------------------------------
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	var data pageData
	data.Title = "Dashboard"
	s.fillSessionMeta(&data)

	if err := s.Blog.FetchPosts(ctx); err != nil {
		data.Flash = "Failed to fetch posts"
	}
	for _, p := range s.Blog.Posts() {
		if p.Author.ID == data.User.ID {
			data.Posts = append(data.Posts, s.viewPost(p))
		}
	}
	flashFrom(r, "Post deleted", &data)
	util.Render(w, "dashboard.html", data)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	var data pageData
	data.Title = "Profile"
	s.fillSessionMeta(&data)

	// el contador de posts propios sale de la colección
	if err := s.Blog.FetchPosts(ctx); err != nil {
		data.Flash = "Failed to fetch posts"
	}
	for _, p := range s.Blog.Posts() {
		if p.Author.ID == data.User.ID {
			data.Posts = append(data.Posts, s.viewPost(p))
		}
	}
	util.Render(w, "profile.html", data)
}

// ------------------------------------------------------------------------------
// ------------HandleAdmin: moderación--------------------------------------------
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	var data pageData
	data.Title = "Admin"
	s.fillSessionMeta(&data)

	posts, err := s.Blog.AdminPosts(ctx)
	if err != nil {
		data.Flash = "Failed to fetch posts"
	}
	for _, p := range posts {
		data.Posts = append(data.Posts, s.viewPost(p))
	}
	flashFrom(r, "Post deleted", &data)
	util.Render(w, "admin.html", data)
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	if err := s.Blog.AdminDeletePost(ctx, id); err != nil {
		http.Redirect(w, r, "/admin?err=Failed+to+delete+post", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin?ok=1", http.StatusSeeOther)
}

// ------------------------------------------------------------------------------
// ------------HandleCreatePost / HandleEditPost----------------------------------
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var data pageData
	data.Title = "New post"
	s.fillSessionMeta(&data)

	if r.Method == http.MethodGet {
		flashFrom(r, "", &data)
		util.Render(w, "post_form.html", data)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))

	if _, err := s.Blog.CreatePost(ctx, title, content); err != nil {
		http.Redirect(w, r, "/create-post?err=Failed+to+create+post", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?ok=1", http.StatusSeeOther)
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	id := mux.Vars(r)["id"]

	if r.Method == http.MethodGet {
		p, err := s.Blog.GetPost(ctx, id)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to fetch post", http.StatusBadGateway)
			return
		}
		var data pageData
		data.Title = "Edit post"
		data.Form = formVM{ID: p.ID, Title: p.Title, Content: p.Content}
		flashFrom(r, "", &data)
		s.fillSessionMeta(&data)
		util.Render(w, "post_form.html", data)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))

	if _, err := s.Blog.UpdatePost(ctx, id, title, content); err != nil {
		http.Redirect(w, r, "/edit-post/"+id+"?err=Failed+to+update+post", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/post/"+id+"?ok=1", http.StatusSeeOther)
}
