package services

import "github.com/mthuyet/trello-app/board"

// Realtime event names. Every successful mutation publishes one event to the
// affected board's room carrying enough payload for recipients to apply the
// change without a follow-up fetch.
const (
	EventJoinBoardRoom       = "joinBoardRoom"
	EventJoinedBoardRoom     = "joinedBoardRoom"
	EventJoinBoardRoomFailed = "joinBoardRoomFailed"
	EventPing                = "ping"
	EventPong                = "pong"

	EventColumnOrderUpdated = "columnOrderUpdated"
	EventColumnUpdated      = "columnUpdated"
	EventCardMoved          = "cardMovedToDifferentColumn"

	EventCardCreated   = "cardCreated"
	EventCardUpdated   = "cardUpdated"
	EventCardDeleted   = "cardDeleted"
	EventColumnCreated = "columnCreated"
	EventColumnDeleted = "columnDeleted"

	EventMemberJoined  = "memberJoined"
	EventMemberRemoved = "memberRemoved"

	EventLabelAdded   = "labelAdded"
	EventLabelUpdated = "labelUpdated"
	EventLabelRemoved = "labelRemoved"

	EventBoardUpdated      = "boardUpdated"
	EventBoardDeleted      = "boardDeleted"
	EventInvitationCreated = "invitationCreated"
)

// Publisher fans one event out to every session in a board's room.
// excludeUserID skips the originating user's sessions; an empty value sends
// to everyone including the originator, which is the default for board
// mutations since the client reconciler is idempotent against its own echo.
type Publisher interface {
	Publish(boardID string, msg WebSocketMessage, excludeUserID string)
}

// JoinBoardRoomPayload is sent by a client requesting to join a board room
// and echoed back on success.
type JoinBoardRoomPayload struct {
	BoardID string `json:"boardId"`
}

type ColumnOrderUpdatedPayload struct {
	BoardID        string   `json:"boardId"`
	ColumnOrderIDs []string `json:"columnOrderIds"`
}

type ColumnUpdatedPayload struct {
	BoardID string        `json:"boardId"`
	Column  *board.Column `json:"column"`
}

// CardMovedPayload carries everything a client needs to replay a cross-
// column move locally: both order arrays plus the updated card.
type CardMovedPayload struct {
	BoardID              string      `json:"boardId"`
	CardID               string      `json:"cardId"`
	OriginalColumnID     string      `json:"originalColumnId"`
	OriginalCardOrderIDs []string    `json:"originalCardOrderIds"`
	NewColumnID          string      `json:"newColumnId"`
	NewCardOrderIDs      []string    `json:"newCardOrderIds"`
	Card                 *board.Card `json:"card"`
}

type CardCreatedPayload struct {
	BoardID   string      `json:"boardId"`
	Card      *board.Card `json:"card"`
	CreatedBy string      `json:"createdBy"`
}

type CardUpdatedPayload struct {
	BoardID string      `json:"boardId"`
	Card    *board.Card `json:"card"`
}

type CardDeletedPayload struct {
	BoardID   string `json:"boardId"`
	ColumnID  string `json:"columnId"`
	CardID    string `json:"cardId"`
	CardTitle string `json:"cardTitle"`
	DeletedBy string `json:"deletedBy"`
}

type ColumnCreatedPayload struct {
	BoardID   string        `json:"boardId"`
	Column    *board.Column `json:"column"`
	CreatedBy string        `json:"createdBy"`
}

type ColumnDeletedPayload struct {
	BoardID     string `json:"boardId"`
	ColumnID    string `json:"columnId"`
	ColumnTitle string `json:"columnTitle"`
}

type MemberPayload struct {
	BoardID string      `json:"boardId"`
	Member  *board.User `json:"member"`
}

type LabelsPayload struct {
	BoardID        string        `json:"boardId"`
	CardID         string        `json:"cardId"`
	ColumnID       string        `json:"columnId"`
	Labels         []board.Label `json:"labels"`
	RemovedLabelID string        `json:"removedLabelId,omitempty"`
}

type BoardUpdatedPayload struct {
	Board *board.Board `json:"board"`
}

type BoardDeletedPayload struct {
	BoardID    string `json:"boardId"`
	BoardTitle string `json:"boardTitle"`
}

type InvitationCreatedPayload struct {
	BoardID    string            `json:"boardId"`
	Invitation *board.Invitation `json:"invitation"`
	Invitee    *board.User       `json:"invitee"`
}
