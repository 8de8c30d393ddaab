package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rubiojr/agentscope/pkg/search"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleStreamAgents streams every page of a filtered search over a WebSocket,
// following next cursors until the results are exhausted or max_pages pages
// were sent.
//
// The connection receives an init frame, one page frame per page, then a done
// frame. A failing search produces an error frame and ends the stream.
func (s *Server) HandleStreamAgents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := search.ParseSearchParams(query)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	pageSize, cursor, err := search.ParsePage(query)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	maxPages := 0
	if v := query.Get("max_pages"); v != "" {
		maxPages, err = strconv.Atoi(v)
		if err != nil || maxPages < 0 {
			s.writeError(w, http.StatusBadRequest, "Invalid parameters", "invalid max_pages "+strconv.Quote(v))
			return
		}
	}

	service := s.Service()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("failed to upgrade connection: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debugf("closing websocket: %v", err)
		}
	}()

	// The client never sends data; a read error means it went away.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(msg StreamMessage) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(msg)
	}

	if err := send(StreamMessage{Type: MessageInit, PageSize: pageSize, NextCursor: cursor}); err != nil {
		logger.Debugf("writing init frame: %v", err)
		return
	}

	total := 0
	page := 0
	for {
		result, err := service.SearchAgents(ctx, &params, pageSize, cursor)
		if err != nil {
			if ctx.Err() == nil {
				_ = send(StreamMessage{Type: MessageError, Error: err.Error()})
			}
			return
		}

		page++
		total += len(result.Items)
		msg := StreamMessage{
			Type:       MessagePage,
			Page:       page,
			Items:      result.Items,
			Count:      len(result.Items),
			NextCursor: result.NextCursor,
		}
		if err := send(msg); err != nil {
			logger.Debugf("writing page %d: %v", page, err)
			return
		}

		cursor = result.NextCursor
		if cursor == "" || (maxPages > 0 && page >= maxPages) {
			break
		}
	}

	if err := send(StreamMessage{Type: MessageDone, Page: page, Count: total, Total: total, NextCursor: cursor}); err != nil {
		logger.Debugf("writing done frame: %v", err)
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
