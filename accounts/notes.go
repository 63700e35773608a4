package accounts

import (
	"context"

	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/jrsteele09/go-notes-server/notes"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

// PersonInput describes the visitor leaving a comment.
type PersonInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type CommentInput struct {
	Content *string      `json:"content"`
	User    *PersonInput `json:"user"`
}

// Comment is a visitor note together with its author.
type Comment struct {
	*notes.Note
	Author *users.User `json:"user"`
}

func validContent(v *apperrors.ValidationError, content *string, mandatory bool) {
	if content == nil {
		if mandatory {
			v.Add("content", MsgRequired)
		}
		return
	}
	if mandatory && !required(v, "content", *content) {
		return
	}
	maxLength(v, "content", *content, notes.MaxContentLength)
}

func (p *PersonInput) validate() *apperrors.ValidationError {
	v := &apperrors.ValidationError{}
	if p.Email != nil {
		validEmail(v, "email", *p.Email, false)
	}
	if p.FirstName != nil {
		maxLength(v, "first_name", *p.FirstName, maxNameLength)
	}
	if p.LastName != nil {
		maxLength(v, "last_name", *p.LastName, maxNameLength)
	}
	return v
}

func (p *PersonInput) apply(user *users.User) {
	user.Email = utils.ValueOr(p.Email, user.Email)
	user.FirstName = utils.ValueOr(p.FirstName, user.FirstName)
	user.LastName = utils.ValueOr(p.LastName, user.LastName)
}

// Notes pages over the caller's notes.
func (s *Service) Notes(ctx context.Context, inv *auth.Invocation) (pagination.Store[*notes.Note], error) {
	return run(ctx, inv, []auth.Step{require(s.authn.AuthRequired())}, func() (pagination.Store[*notes.Note], error) {
		return s.notes.Store(ctx, inv.Request.Principal().ID), nil
	})
}

func (s *Service) Note(ctx context.Context, inv *auth.Invocation, id string) (*notes.Note, error) {
	return run(ctx, inv, []auth.Step{require(s.authn.AuthRequired())}, func() (*notes.Note, error) {
		return s.ownNote(ctx, inv, id)
	})
}

func (s *Service) CreateNote(ctx context.Context, inv *auth.Invocation, content string) (*notes.Note, error) {
	steps := []auth.Step{
		s.lock("CreateNote"),
		require(s.authn.AuthRequired()),
	}
	return run(ctx, inv, steps, func() (*notes.Note, error) {
		v := &apperrors.ValidationError{}
		if validContent(v, &content, true); v.HasErrors() {
			return nil, v
		}
		note := notes.New(inv.Request.Principal().ID, content, s.now())
		if err := s.notes.Upsert(ctx, note); err != nil {
			return nil, errors.Wrap(err, "Service.CreateNote")
		}
		return note, nil
	})
}

func (s *Service) UpdateNote(ctx context.Context, inv *auth.Invocation, id string, content *string) (*notes.Note, error) {
	inv = withArg(inv, "id", id)
	steps := []auth.Step{
		s.lockBy("UpdateNote", "id"),
		require(s.authn.AuthRequired()),
	}
	return run(ctx, inv, steps, func() (*notes.Note, error) {
		v := &apperrors.ValidationError{}
		if validContent(v, content, false); v.HasErrors() {
			return nil, v
		}
		note, err := s.ownNote(ctx, inv, id)
		if err != nil {
			return nil, err
		}
		if content == nil || *content == note.Content {
			return note, nil
		}
		note.Update(*content, s.now())
		if err := s.notes.Upsert(ctx, note); err != nil {
			return nil, errors.Wrap(err, "Service.UpdateNote")
		}
		return note, nil
	})
}

func (s *Service) DeleteNote(ctx context.Context, inv *auth.Invocation, id string) error {
	inv = withArg(inv, "id", id)
	steps := []auth.Step{
		s.lockBy("DeleteNote", "id"),
		require(s.authn.AuthRequired()),
	}
	return auth.Run(ctx, inv, steps, func() error {
		if _, err := s.ownNote(ctx, inv, id); err != nil {
			return err
		}
		return s.notes.Delete(ctx, id)
	})
}

// ownNote returns note id when the caller owns it.
func (s *Service) ownNote(ctx context.Context, inv *auth.Invocation, id string) (*notes.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.OwnedBy(inv.Request.Principal().ID) {
		return nil, &auth.PermissionError{Field: "perm", Message: MsgPermissionDenied}
	}
	return note, nil
}

// Comments pages over the visitor notes. Anyone may read them.
func (s *Service) Comments(ctx context.Context) pagination.Store[*notes.Note] {
	return s.notes.Comments(ctx)
}

func (s *Service) Comment(ctx context.Context, id string) (*Comment, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.Comment {
		return nil, apperrors.ErrNoteNotFound
	}
	return s.withAuthor(ctx, note)
}

// Author returns the ad-hoc user behind a comment.
func (s *Service) Author(ctx context.Context, note *notes.Note) (*users.User, error) {
	return s.users.GetByID(ctx, note.UserID)
}

// CreateComment stores a visitor note. The visitor becomes an inactive user
// that can never sign in.
func (s *Service) CreateComment(ctx context.Context, inv *auth.Invocation, in CommentInput) (*Comment, error) {
	return run(ctx, inv, []auth.Step{s.lock("CreateComment")}, func() (*Comment, error) {
		v := &apperrors.ValidationError{}
		validContent(v, in.Content, true)
		if in.User == nil {
			v.Add("user", MsgRequired)
		} else {
			v.Nest("user", in.User.validate())
		}
		if v.HasErrors() {
			return nil, v
		}

		now := s.now()
		author := users.New("user."+utils.UniqueID(11), now)
		author.Active = false
		in.User.apply(author)
		if err := s.save(ctx, author); err != nil {
			return nil, err
		}

		note := notes.New(author.ID, *in.Content, now)
		note.Comment = true
		if err := s.notes.Upsert(ctx, note); err != nil {
			return nil, errors.Wrap(err, "Service.CreateComment")
		}
		return &Comment{Note: note, Author: author}, nil
	})
}

func (s *Service) UpdateComment(ctx context.Context, inv *auth.Invocation, id string, in CommentInput) (*Comment, error) {
	inv = withArg(inv, "id", id)
	return run(ctx, inv, []auth.Step{s.lockBy("UpdateComment", "id")}, func() (*Comment, error) {
		v := &apperrors.ValidationError{}
		validContent(v, in.Content, false)
		if in.User != nil {
			v.Nest("user", in.User.validate())
		}
		if v.HasErrors() {
			return nil, v
		}

		comment, err := s.Comment(ctx, id)
		if err != nil {
			return nil, err
		}
		if in.Content != nil && *in.Content != comment.Content {
			comment.Update(*in.Content, s.now())
			if err := s.notes.Upsert(ctx, comment.Note); err != nil {
				return nil, errors.Wrap(err, "Service.UpdateComment")
			}
		}
		if in.User != nil {
			in.User.apply(comment.Author)
			if err := s.save(ctx, comment.Author); err != nil {
				return nil, err
			}
		}
		return comment, nil
	})
}

// DeleteComment removes the comment and its ad-hoc author.
func (s *Service) DeleteComment(ctx context.Context, inv *auth.Invocation, id string) error {
	inv = withArg(inv, "id", id)
	return auth.Run(ctx, inv, []auth.Step{s.lockBy("DeleteComment", "id")}, func() error {
		comment, err := s.Comment(ctx, id)
		if err != nil {
			return err
		}
		if err := s.notes.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.users.Delete(ctx, comment.Author.ID); err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
			return errors.Wrap(err, "Service.DeleteComment author")
		}
		return nil
	})
}

func (s *Service) withAuthor(ctx context.Context, note *notes.Note) (*Comment, error) {
	author, err := s.Author(ctx, note)
	if err != nil {
		return nil, errors.Wrap(err, "Service.withAuthor")
	}
	return &Comment{Note: note, Author: author}, nil
}
