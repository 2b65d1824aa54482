package rtc

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hraban/opus"
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"

	"github.com/skillvee/Skillvee-ai-studio/internal/voice"
)

// signalMessage is the WebSocket signaling frame.
// Types: "offer", "answer", "candidate", "ice-complete", "bye", "error".
type signalMessage struct {
	Type          string  `json:"type"`
	SDP           string  `json:"sdp,omitempty"`
	Candidate     string  `json:"candidate,omitempty"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  65536,
	WriteBufferSize: 65536,
	CheckOrigin: func(r *http.Request) bool {
		// Same-host browser UI; restrict when deployed behind a real origin.
		return true
	},
}

// AnswerFunc builds and starts the voice call the moment the browser's audio
// leg is up, with the given sink as the call's playout path. This is the
// answer moment: the realtime channel opens here, never while ringing.
type AnswerFunc func(sink voice.AudioSink) (*voice.Call, error)

// Bridge terminates the browser's WebRTC audio leg and couples it to a voice
// call: inbound microphone Opus is decoded and fed upstream, synthesized
// audio comes back through the paced track.
type Bridge struct {
	iceServersJSON string
}

func NewBridge(iceServersJSON string) *Bridge {
	return &Bridge{iceServersJSON: iceServersJSON}
}

// ServeWebSocket performs offer/answer + trickle ICE signaling on one
// WebSocket connection, then runs media until the peer connection dies.
func (b *Bridge) ServeWebSocket(w http.ResponseWriter, r *http.Request, answer AnswerFunc) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("rtc: ws upgrade error: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	var offerSDP string
	for {
		mt, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var m signalMessage
		if json.Unmarshal(data, &m) != nil {
			continue
		}
		switch strings.ToLower(m.Type) {
		case "offer":
			if m.SDP != "" {
				offerSDP = m.SDP
			}
		case "bye":
			return
		}
		if offerSDP != "" {
			break
		}
	}

	pc, outTrack, err := b.createPeer()
	if err != nil {
		writeError(conn, err)
		return
	}
	defer func() { _ = pc.Close() }()

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			_ = conn.WriteJSON(signalMessage{Type: "ice-complete"})
			return
		}
		init := c.ToJSON()
		_ = conn.WriteJSON(signalMessage{Type: "candidate", Candidate: init.Candidate, SDPMid: init.SDPMid, SDPMLineIndex: init.SDPMLineIndex})
	})

	go func() {
		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}
			var m signalMessage
			if json.Unmarshal(data, &m) != nil {
				continue
			}
			switch strings.ToLower(m.Type) {
			case "candidate":
				if m.Candidate == "" {
					continue
				}
				_ = pc.AddICECandidate(webrtc.ICECandidateInit{Candidate: m.Candidate, SDPMid: m.SDPMid, SDPMLineIndex: m.SDPMLineIndex})
			case "bye":
				_ = pc.Close()
				return
			}
		}
	}()

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}); err != nil {
		writeError(conn, err)
		return
	}
	sdpAnswer, err := pc.CreateAnswer(nil)
	if err != nil {
		writeError(conn, err)
		return
	}
	if err := pc.SetLocalDescription(sdpAnswer); err != nil {
		writeError(conn, err)
		return
	}
	local := pc.LocalDescription()
	if local == nil {
		writeError(conn, errors.New("no local description"))
		return
	}
	if err := conn.WriteJSON(signalMessage{Type: "answer", SDP: local.SDP}); err != nil {
		return
	}

	b.attachMedia(pc, outTrack, answer)

	for {
		time.Sleep(2 * time.Second)
		switch pc.ConnectionState() {
		case webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateDisconnected:
			return
		}
	}
}

func (b *Bridge) createPeer() (*webrtc.PeerConnection, *webrtc.TrackLocalStaticSample, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, nil, err
	}
	ir := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, ir); err != nil {
		return nil, nil, err
	}
	api := webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine), webrtc.WithInterceptorRegistry(ir))

	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: b.iceServers()})
	if err != nil {
		return nil, nil, err
	}
	outTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 1},
		"coworker-audio", "coworker",
	)
	if err != nil {
		_ = pc.Close()
		return nil, nil, err
	}
	if _, err := pc.AddTrack(outTrack); err != nil {
		_ = pc.Close()
		return nil, nil, err
	}
	return pc, outTrack, nil
}

// attachMedia wires the microphone leg and answers the call once the remote
// audio track arrives.
func (b *Bridge) attachMedia(pc *webrtc.PeerConnection, outTrack *webrtc.TrackLocalStaticSample, answer AnswerFunc) {
	pc.OnTrack(func(remote *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if remote.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		log.Printf("rtc: remote audio track up: codec=%s", remote.Codec().MimeType)

		paced, err := NewPacedOpusTrack(outTrack)
		if err != nil {
			log.Printf("rtc: opus encoder error: %v", err)
			return
		}

		call, err := answer(paced)
		if err != nil {
			log.Printf("rtc: answering call failed: %v", err)
			paced.Close()
			return
		}

		pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
			switch state {
			case webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateDisconnected:
				call.End()
				paced.FlushTail()
				time.AfterFunc(400*time.Millisecond, paced.Close)
			}
		})

		pc.OnDataChannel(func(dc *webrtc.DataChannel) {
			if dc.Label() != "control" {
				return
			}
			dc.OnMessage(func(msg webrtc.DataChannelMessage) {
				if strings.TrimSpace(strings.ToLower(string(msg.Data))) == "hangup" {
					call.End()
				}
			})
		})

		dec, derr := opus.NewDecoder(48000, 1)
		if derr != nil {
			log.Printf("rtc: opus decoder error: %v", derr)
			return
		}
		go func() {
			samples := make([]int16, 5760)
			for {
				pkt, _, readErr := remote.ReadRTP()
				if readErr != nil {
					return
				}
				if len(pkt.Payload) == 0 {
					continue
				}
				n, decErr := dec.Decode(pkt.Payload, samples)
				if decErr != nil {
					continue
				}
				call.SendAudio(Downsample48to16(samples[:n]))
			}
		}()
	})
}

func (b *Bridge) iceServers() []webrtc.ICEServer {
	var servers []webrtc.ICEServer
	if err := json.Unmarshal([]byte(b.iceServersJSON), &servers); err == nil && len(servers) > 0 {
		return servers
	}
	return []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}}
}

func writeError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(map[string]string{"type": "error", "error": err.Error()})
}
