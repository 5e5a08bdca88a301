// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/meridianstake/meridian/api/records"
	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/co"
	"github.com/meridianstake/meridian/log"
	"github.com/meridianstake/meridian/oracle"
)

var logger = log.WithContext("pkg", "subscriptions")

// Subscriptions streams committed oracle records over websocket.
type Subscriptions struct {
	oracle   *oracle.Oracle
	upgrader *websocket.Upgrader
	done     chan struct{}
	goes     co.Goes
}

// New creates the subscription endpoint group.
func New(o *oracle.Oracle, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		oracle: o,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeRecords(w http.ResponseWriter, req *http.Request) error {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("failed to upgrade subscription", "err", err)
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	s.goes.Go(func() {
		// the read loop only serves to detect peer close
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(closed)
				return
			}
		}
	})

	waiter := s.oracle.NewCommittedWaiter()
	sent := s.oracle.NumRecords()
	for {
		// grab the wait channel before draining, so a commit that lands in
		// between still wakes the loop
		wakeup := waiter.C()

		for sent < s.oracle.NumRecords() {
			rec, err := s.oracle.RecordAt(sent)
			if err != nil {
				return err
			}
			if err := conn.WriteJSON(records.ConvertRecord(rec)); err != nil {
				return nil
			}
			sent++
		}

		select {
		case <-wakeup:
		case <-closed:
			return nil
		case <-s.done:
			return nil
		}
	}
}

// Close stops all active subscriptions.
func (s *Subscriptions) Close() {
	close(s.done)
	s.goes.Wait()
}

// Mount mounts the endpoints to the given router.
func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/records").
		Methods(http.MethodGet).
		Name("subscriptions_records").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeRecords))
}
