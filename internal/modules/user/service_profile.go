package user

import (
	"context"
	"errors"
)

// GetProfile returns a user together with their language and interest
// associations.
func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to find user", "error", err, "user_id", userID)
		return nil, ErrInternal.WithCause(err)
	}
	return s.loadProfile(ctx, account)
}

// UpdateProfile applies the provided fields to the account and replaces its
// language/interest associations when the corresponding ID lists are present.
func (s *service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*Profile, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to find user", "error", err, "user_id", userID)
		return nil, ErrInternal.WithCause(err)
	}

	if input.Name != nil {
		account.Name = *input.Name
	}
	if input.Bio != nil {
		account.Bio = input.Bio
	}
	if len(input.Image) > 0 {
		ref, err := s.blobs.Store(ctx, input.Image, input.ImageExt)
		if err != nil {
			s.logger.Error("failed to store profile image", "error", err, "user_id", userID)
			return nil, ErrInternal.WithCause(err)
		}
		account.ProfileImage = &ref
	}

	if err := s.repo.Update(ctx, account); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", userID)
		return nil, ErrInternal.WithCause(err)
	}

	if input.LanguageIDs != nil {
		if err := s.repo.ReplaceLanguages(ctx, userID, *input.LanguageIDs); err != nil {
			s.logger.Error("failed to replace languages", "error", err, "user_id", userID)
			return nil, ErrInternal.WithCause(err)
		}
	}
	if input.InterestIDs != nil {
		if err := s.repo.ReplaceInterests(ctx, userID, *input.InterestIDs); err != nil {
			s.logger.Error("failed to replace interests", "error", err, "user_id", userID)
			return nil, ErrInternal.WithCause(err)
		}
	}

	s.logger.Info("profile updated", "user_id", userID)
	return s.loadProfile(ctx, account)
}

// ListUsers returns all users.
func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return users, nil
}

// GetUser returns a single user by ID.
func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to find user", "error", err, "user_id", id)
		return nil, ErrInternal.WithCause(err)
	}
	return account, nil
}

// SearchUsers finds users whose name or email contains q, case-insensitively.
func (s *service) SearchUsers(ctx context.Context, q string) ([]User, error) {
	users, err := s.repo.Search(ctx, q)
	if err != nil {
		s.logger.Error("failed to search users", "error", err, "query", q)
		return nil, ErrInternal.WithCause(err)
	}
	return users, nil
}

func (s *service) loadProfile(ctx context.Context, account *User) (*Profile, error) {
	languages, err := s.repo.LanguagesForUser(ctx, account.ID)
	if err != nil {
		s.logger.Error("failed to load languages", "error", err, "user_id", account.ID)
		return nil, ErrInternal.WithCause(err)
	}
	interests, err := s.repo.InterestsForUser(ctx, account.ID)
	if err != nil {
		s.logger.Error("failed to load interests", "error", err, "user_id", account.ID)
		return nil, ErrInternal.WithCause(err)
	}
	return &Profile{
		User:      *account,
		Languages: languages,
		Interests: interests,
	}, nil
}
