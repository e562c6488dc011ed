package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/models"
	"github.com/dmitrijs2005/fe/internal/server/config"
	"github.com/dmitrijs2005/fe/internal/server/repositories/repomanager"
)

// Notifier is told about every committed message.
type Notifier interface {
	MessageStored(ctx context.Context, m models.Message)
}

// Archiver keeps an extra copy of file payloads.
type Archiver interface {
	ArchiveFile(ctx context.Context, m models.Message)
}

// MessageService is the message store. Inserts are serialized so ids and
// timestamps grow together; reads run concurrently. Notifications are sent
// after the insert lock is released and archive uploads run in the
// background.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger

	fetchIncludesContent    bool
	readRequiresParticipant bool

	notifier Notifier
	archiver Archiver

	mu      sync.Mutex
	pending sync.WaitGroup
	now     func() time.Time
}

// NewMessageService constructs a MessageService. notifier and archiver may
// be nil.
func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger,
	notifier Notifier, archiver Archiver) *MessageService {
	return &MessageService{
		db:                      db,
		repomanager:             m,
		log:                     log.With("module", "messages"),
		fetchIncludesContent:    cfg.FetchIncludesContent,
		readRequiresParticipant: cfg.ReadRequiresParticipant,
		notifier:                notifier,
		archiver:                archiver,
		now:                     time.Now,
	}
}

// SendText stores a plain text message and returns its id.
func (s *MessageService) SendText(ctx context.Context, sender, receiver, text string) (int64, error) {
	m := &models.Message{
		Sender:      sender,
		Receiver:    receiver,
		PayloadName: common.TextPayloadName,
		PayloadType: common.TextPayloadType,
		Content:     []byte(text),
	}
	return s.insert(ctx, m)
}

// SendFile stores a file message and returns its id. fileType may be a
// sentinel, in which case it is guessed.
func (s *MessageService) SendFile(ctx context.Context, sender, receiver, fileName, fileType string, content []byte) (int64, error) {
	if common.IsSentinel(fileName) {
		return 0, fmt.Errorf("%w: file name is required", common.ErrorValidation)
	}
	if content == nil {
		content = []byte{}
	}
	m := &models.Message{
		Sender:      sender,
		Receiver:    receiver,
		PayloadName: fileName,
		PayloadType: ResolveFileType(fileName, fileType, content),
		Content:     content,
	}
	id, err := s.insert(ctx, m)
	if err != nil {
		return 0, err
	}
	if s.archiver != nil {
		archived := *m
		actx := context.WithoutCancel(ctx)
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.archiver.ArchiveFile(actx, archived)
		}()
	}
	return id, nil
}

// Wait blocks until background archive uploads have finished.
func (s *MessageService) Wait() {
	s.pending.Wait()
}

// Fetch lists every message username sent or received, oldest first.
func (s *MessageService) Fetch(ctx context.Context, username string) ([]models.Message, error) {
	list, err := s.repomanager.Messages(s.db).ListForParticipant(ctx, username, s.fetchIncludesContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}
	return list, nil
}

// Read returns one message by id on behalf of caller.
func (s *MessageService) Read(ctx context.Context, caller string, id int64) (*models.Message, error) {
	m, err := s.repomanager.Messages(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}

	if !m.HasParticipant(caller) {
		if s.readRequiresParticipant {
			return nil, common.ErrorForbidden
		}
		s.log.Info(ctx, "message read by non-participant", "id", id, "caller", caller)
	}

	return m, nil
}

func (s *MessageService) insert(ctx context.Context, m *models.Message) (int64, error) {
	if common.IsSentinel(m.Receiver) {
		return 0, fmt.Errorf("%w: receiver is required", common.ErrorValidation)
	}

	s.mu.Lock()
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.repomanager.Users(tx).Exists(ctx, m.Receiver)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrorReceiverNotFound
		}

		m.Timestamp = s.now().Unix()
		id, err := s.repomanager.Messages(tx).Create(ctx, m)
		if err != nil {
			return err
		}
		m.ID = id
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, common.ErrorReceiverNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", common.ErrorStorage, err)
	}

	s.log.Debug(ctx, "message stored", "id", m.ID, "sender", m.Sender, "receiver", m.Receiver, "type", m.PayloadType)

	if s.notifier != nil {
		s.notifier.MessageStored(ctx, *m)
	}

	return m.ID, nil
}
