package services

import (
	"context"
	"strings"
	"time"

	"github.com/mthuyet/trello-app/board"
	"github.com/mthuyet/trello-app/database"
)

// CardService owns card CRUD plus the embedded collections: comments, card
// members, and labels. Card ordering lives on the owning column.
type CardService struct {
	store *database.Store
	pub   Publisher
}

func NewCardService(store *database.Store, pub Publisher) *CardService {
	return &CardService{store: store, pub: pub}
}

type CreateCardInput struct {
	BoardID  string `json:"boardId"`
	ColumnID string `json:"columnId"`
	Title    string `json:"title"`
}

type CommentInput struct {
	Content string `json:"content"`
}

type MemberUpdate struct {
	UserID string `json:"userId"`
	Action string `json:"action"`
}

type UpdateCardInput struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Cover       *string       `json:"cover"`
	Comment     *CommentInput `json:"comment"`
	Member      *MemberUpdate `json:"member"`
}

type LabelInput struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

type UpdateLabelInput struct {
	Color *string `json:"color"`
	Text  *string `json:"text"`
}

// findCardForUser loads a card and checks board permission in one step.
func (s *CardService) findCardForUser(ctx context.Context, cardID, userID string) (*board.Card, error) {
	if err := validateID(cardID, "cardId"); err != nil {
		return nil, err
	}
	card, err := s.store.FindCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.Destroyed {
		return nil, &NotFoundError{Entity: "card"}
	}
	if _, err := requireBoardMember(ctx, s.store, card.BoardID, userID); err != nil {
		return nil, err
	}
	return card, nil
}

// CreateCard creates a card and appends its id to the column's order.
func (s *CardService) CreateCard(ctx context.Context, userID string, in CreateCardInput) (*board.Card, error) {
	if err := validateID(in.BoardID, "boardId"); err != nil {
		return nil, err
	}
	if err := validateID(in.ColumnID, "columnId"); err != nil {
		return nil, err
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if _, err := requireBoardMember(ctx, s.store, in.BoardID, userID); err != nil {
		return nil, err
	}

	col, err := s.store.FindColumnByID(ctx, in.ColumnID)
	if err != nil {
		return nil, err
	}
	if col == nil || col.Destroyed {
		return nil, &NotFoundError{Entity: "column"}
	}
	if col.BoardID != in.BoardID {
		return nil, &ConflictError{Message: "column does not belong to this board"}
	}

	now := time.Now()
	card := &board.Card{
		ID:        board.NewID(),
		BoardID:   in.BoardID,
		ColumnID:  in.ColumnID,
		Title:     in.Title,
		MemberIDs: []string{},
		Comments:  []board.Comment{},
		Labels:    []board.Label{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, err
	}
	if _, err := s.store.PushCardOrderID(ctx, in.ColumnID, card.ID); err != nil {
		return nil, err
	}

	s.pub.Publish(in.BoardID, WebSocketMessage{
		Type: EventCardCreated,
		Data: CardCreatedPayload{BoardID: in.BoardID, Card: card, CreatedBy: userID},
	}, "")
	return card, nil
}

// UpdateCard dispatches a card update: a comment is appended, a member
// update adds or removes a card member, anything else is a general-field
// merge.
func (s *CardService) UpdateCard(ctx context.Context, userID, cardID string, in UpdateCardInput) (*board.Card, error) {
	card, err := s.findCardForUser(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	var updated *board.Card
	switch {
	case in.Comment != nil:
		if strings.TrimSpace(in.Comment.Content) == "" {
			return nil, validationErrorf("comment content must not be empty")
		}
		commenter, err := s.store.FindUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		comment := board.Comment{
			ID:          board.NewID(),
			UserID:      userID,
			Content:     in.Comment.Content,
			CommentedAt: time.Now(),
		}
		if commenter != nil {
			comment.UserEmail = commenter.Email
			comment.UserDisplayName = commenter.DisplayName
		}
		updated, err = s.store.PushComment(ctx, cardID, comment)
		if err != nil {
			return nil, err
		}

	case in.Member != nil:
		memberIDs, err := applyMemberUpdate(card.MemberIDs, *in.Member)
		if err != nil {
			return nil, err
		}
		updated, err = s.store.UpdateCard(ctx, cardID, map[string]any{"memberIds": memberIDs})
		if err != nil {
			return nil, err
		}

	default:
		fields := make(map[string]any)
		if in.Title != nil {
			if err := validateTitle(*in.Title); err != nil {
				return nil, err
			}
			fields["title"] = *in.Title
		}
		if in.Description != nil {
			fields["description"] = *in.Description
		}
		if in.Cover != nil {
			fields["cover"] = *in.Cover
		}
		if len(fields) == 0 {
			return card, nil
		}
		updated, err = s.store.UpdateCard(ctx, cardID, fields)
		if err != nil {
			return nil, err
		}
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "card"}
	}

	s.pub.Publish(card.BoardID, WebSocketMessage{
		Type: EventCardUpdated,
		Data: CardUpdatedPayload{BoardID: card.BoardID, Card: updated},
	}, "")
	return updated, nil
}

func applyMemberUpdate(memberIDs []string, update MemberUpdate) ([]string, error) {
	if err := validateID(update.UserID, "member.userId"); err != nil {
		return nil, err
	}
	switch update.Action {
	case board.MemberActionAdd:
		for _, id := range memberIDs {
			if id == update.UserID {
				return memberIDs, nil
			}
		}
		return append(append([]string{}, memberIDs...), update.UserID), nil
	case board.MemberActionRemove:
		kept := make([]string, 0, len(memberIDs))
		for _, id := range memberIDs {
			if id != update.UserID {
				kept = append(kept, id)
			}
		}
		return kept, nil
	default:
		return nil, validationErrorf("member.action must be %q or %q", board.MemberActionAdd, board.MemberActionRemove)
	}
}

// DeleteCard removes a card and pulls its id from the owning column's order.
func (s *CardService) DeleteCard(ctx context.Context, userID, cardID string) error {
	card, err := s.findCardForUser(ctx, cardID, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCard(ctx, cardID); err != nil {
		return err
	}
	if _, err := s.store.PullCardOrderID(ctx, card.ColumnID, cardID); err != nil {
		return err
	}

	s.pub.Publish(card.BoardID, WebSocketMessage{
		Type: EventCardDeleted,
		Data: CardDeletedPayload{
			BoardID:   card.BoardID,
			ColumnID:  card.ColumnID,
			CardID:    cardID,
			CardTitle: card.Title,
			DeletedBy: userID,
		},
	}, "")
	return nil
}

// AddLabel adds a label to a card. At most one label per color per card.
func (s *CardService) AddLabel(ctx context.Context, userID, cardID string, in LabelInput) (*board.Card, error) {
	card, err := s.findCardForUser(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	if !board.ValidLabelColor(in.Color) {
		return nil, validationErrorf("unknown label color %q", in.Color)
	}
	for _, l := range card.Labels {
		if l.Color == in.Color {
			return nil, &ConflictError{Message: "label with this color already exists on this card"}
		}
	}

	labels := append(append([]board.Label{}, card.Labels...), board.Label{
		ID:    board.NewID(),
		Color: in.Color,
		Text:  in.Text,
	})
	updated, err := s.store.SetLabels(ctx, cardID, labels)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "card"}
	}

	s.publishLabels(EventLabelAdded, card, updated.Labels, "")
	return updated, nil
}

// UpdateLabel changes a label's color or text, keeping colors unique per
// card.
func (s *CardService) UpdateLabel(ctx context.Context, userID, cardID, labelID string, in UpdateLabelInput) (*board.Card, error) {
	card, err := s.findCardForUser(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, l := range card.Labels {
		if l.ID == labelID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{Entity: "label"}
	}

	labels := append([]board.Label{}, card.Labels...)
	if in.Color != nil && *in.Color != labels[idx].Color {
		if !board.ValidLabelColor(*in.Color) {
			return nil, validationErrorf("unknown label color %q", *in.Color)
		}
		for i, l := range labels {
			if i != idx && l.Color == *in.Color {
				return nil, &ConflictError{Message: "label with this color already exists on this card"}
			}
		}
		labels[idx].Color = *in.Color
	}
	if in.Text != nil {
		labels[idx].Text = *in.Text
	}

	updated, err := s.store.SetLabels(ctx, cardID, labels)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "card"}
	}

	s.publishLabels(EventLabelUpdated, card, updated.Labels, "")
	return updated, nil
}

// RemoveLabel deletes a label from a card.
func (s *CardService) RemoveLabel(ctx context.Context, userID, cardID, labelID string) (*board.Card, error) {
	card, err := s.findCardForUser(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	found := false
	labels := make([]board.Label, 0, len(card.Labels))
	for _, l := range card.Labels {
		if l.ID == labelID {
			found = true
			continue
		}
		labels = append(labels, l)
	}
	if !found {
		return nil, &NotFoundError{Entity: "label"}
	}

	updated, err := s.store.SetLabels(ctx, cardID, labels)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "card"}
	}

	s.publishLabels(EventLabelRemoved, card, updated.Labels, labelID)
	return updated, nil
}

func (s *CardService) publishLabels(eventType string, card *board.Card, labels []board.Label, removedLabelID string) {
	s.pub.Publish(card.BoardID, WebSocketMessage{
		Type: eventType,
		Data: LabelsPayload{
			BoardID:        card.BoardID,
			CardID:         card.ID,
			ColumnID:       card.ColumnID,
			Labels:         labels,
			RemovedLabelID: removedLabelID,
		},
	}, "")
}
