package runtime

import (
	"encoding/json"
	"io"
	"log"
)

// pullMessage is the subset of the daemon's JSON progress stream we report.
type pullMessage struct {
	Status   string `json:"status"`
	ID       string `json:"id"`
	Progress string `json:"progress"`
	Error    string `json:"error"`
}

// ReportPull forwards image acquisition progress to the log. It drains the
// stream until EOF; a decode error ends reporting but never fails the pull.
func ReportPull(r io.Reader) {
	dec := json.NewDecoder(r)
	for {
		var msg pullMessage
		if err := dec.Decode(&msg); err != nil {
			if err != io.EOF {
				log.Printf("Pull progress stream ended: %v", err)
			}
			return
		}

		switch {
		case msg.Error != "":
			log.Printf("Pull error: %s", msg.Error)
		case msg.ID != "" && msg.Progress != "":
			log.Printf("Pull %s: %s %s", msg.ID, msg.Status, msg.Progress)
		case msg.ID != "":
			log.Printf("Pull %s: %s", msg.ID, msg.Status)
		case msg.Status != "":
			log.Printf("Pull: %s", msg.Status)
		}
	}
}
