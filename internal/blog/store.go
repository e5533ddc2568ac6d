// Package blog mirrors the post list the server returned for the
// active query. It is a best-effort mirror, not a cache: fetch/search
// replace it wholesale, single-post mutations patch it in place with
// the server's return value only. Concurrent writers to the same post
// are last-settle-wins; the store does not try to resolve that.
package blog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"blogclient/internal/api"
	"blogclient/internal/models"
)

type Store struct {
	mu    sync.RWMutex
	posts []models.Post

	api *api.Client
}

func NewStore(client *api.Client) *Store {
	return &Store{api: client}
}

// Posts returns a copy of the current collection in server order.
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// FetchPosts replaces the collection with GET /posts. On failure the
// stale collection stays as-is (stale-but-available).
func (s *Store) FetchPosts(ctx context.Context) error {
	var got []models.Post
	if err := s.api.Do(ctx, http.MethodGet, "/posts", nil, nil, &got); err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}
	s.mu.Lock()
	s.posts = got
	s.mu.Unlock()
	return nil
}

// SearchPosts replaces the collection with the server-filtered results
// and also returns them, so a caller can decouple display from state.
func (s *Store) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	q := url.Values{"q": {query}}
	var got []models.Post
	if err := s.api.Do(ctx, http.MethodGet, "/posts", q, nil, &got); err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	s.mu.Lock()
	s.posts = got
	s.mu.Unlock()
	return got, nil
}

type postBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatePost sends the new post and prepends the server's version
// (server-assigned id, author and timestamps) to the collection.
func (s *Store) CreatePost(ctx context.Context, title, content string) (models.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return models.Post{}, fmt.Errorf("failed to create post: %w", api.ErrValidation)
	}
	var created models.Post
	if err := s.api.Do(ctx, http.MethodPost, "/posts", nil, postBody{title, content}, &created); err != nil {
		return models.Post{}, fmt.Errorf("failed to create post: %w", err)
	}
	s.mu.Lock()
	s.posts = append([]models.Post{created}, s.posts...)
	s.mu.Unlock()
	return created, nil
}

// UpdatePost replaces the matching post in place, keeping its position.
// La colección no se toca si el servidor rechaza la escritura.
func (s *Store) UpdatePost(ctx context.Context, id, title, content string) (models.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return models.Post{}, fmt.Errorf("failed to update post: %w", api.ErrValidation)
	}
	var updated models.Post
	if err := s.api.Do(ctx, http.MethodPut, "/posts/"+id, nil, postBody{title, content}, &updated); err != nil {
		return models.Post{}, fmt.Errorf("failed to update post: %w", err)
	}
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeletePost removes the post server-side and locally. Locally it is a
// no-op when the id is already absent.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/posts/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.removeLocal(id)
	return nil
}

// GetPost is a side-channel read for detail/edit views: it never
// mutates the collection.
func (s *Store) GetPost(ctx context.Context, id string) (models.Post, error) {
	var p models.Post
	if err := s.api.Do(ctx, http.MethodGet, "/posts/"+id, nil, nil, &p); err != nil {
		return models.Post{}, fmt.Errorf("failed to fetch post: %w", err)
	}
	return p, nil
}

type commentBody struct {
	Content string `json:"content"`
}

// AddComment appends the server's comment to the matching post when
// that post is in the collection. Si el post solo se cargó vía GetPost
// la colección no se entera: el caller debe re-consultar (contrato
// documentado, no un bug).
func (s *Store) AddComment(ctx context.Context, postID, content string) (models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, fmt.Errorf("failed to add comment: %w", api.ErrValidation)
	}
	var c models.Comment
	if err := s.api.Do(ctx, http.MethodPost, "/posts/"+postID+"/comments", nil, commentBody{content}, &c); err != nil {
		return models.Comment{}, fmt.Errorf("failed to add comment: %w", err)
	}
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Comments = append(s.posts[i].Comments, c)
			break
		}
	}
	s.mu.Unlock()
	return c, nil
}

// DeleteComment removes the comment server-side and filters it out of
// the matching post locally. Same caveat as AddComment.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/posts/"+postID+"/comments/"+commentID, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID != postID {
			continue
		}
		kept := s.posts[i].Comments[:0:0]
		for _, c := range s.posts[i].Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		s.posts[i].Comments = kept
		break
	}
	s.mu.Unlock()
	return nil
}

// AdminPosts lists every post through the moderation endpoint. It does
// not replace the public collection.
func (s *Store) AdminPosts(ctx context.Context) ([]models.Post, error) {
	var got []models.Post
	if err := s.api.Do(ctx, http.MethodGet, "/admin/posts", nil, nil, &got); err != nil {
		return nil, fmt.Errorf("failed to fetch admin posts: %w", err)
	}
	return got, nil
}

// AdminDeletePost removes a post via moderation and mirrors the
// removal locally if the post happens to be loaded.
func (s *Store) AdminDeletePost(ctx context.Context, id string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/admin/posts/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.removeLocal(id)
	return nil
}

func (s *Store) removeLocal(id string) {
	s.mu.Lock()
	kept := s.posts[:0:0]
	for _, p := range s.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	s.mu.Unlock()
}
