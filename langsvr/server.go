package langsvr

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Server is one language server session: a documentCache keyed by
// normalized URI, plus the lifecycle flags CslLangSvr.cpp's
// LanguageServer tracks (isServerInitialized/isServerShutdown/...).
type Server struct {
	documents map[string]*document

	serverInitialized bool
	clientInitialized bool
	shutdown          bool
	exitCode          int
	traceValue        string
	htmlTheme         string

	out io.Writer
}

// NewServer constructs a Server that writes responses/notifications to out.
func NewServer(out io.Writer) *Server {
	return &Server{documents: make(map[string]*document), out: out, exitCode: -1, traceValue: "off", htmlTheme: "light"}
}

// SetDefaults seeds the trace level and HTML doc-generation theme a
// workspace config file requests, before the client sends its first
// message. CslLangSvr.cpp has no config file and always starts with
// trace "off"; a non-empty argument here only ever overrides that
// default, never a value the client set later via $/setTrace.
func (s *Server) SetDefaults(traceValue, htmlTheme string) {
	if traceValue != "" {
		s.traceValue = traceValue
	}
	if htmlTheme != "" {
		s.htmlTheme = htmlTheme
	}
}

// Run reads Content-Length-framed JSON-RPC messages from in until the
// client sends "exit" or the stream closes, mirroring
// LanguageServer::run's read-dispatch-check-exit loop.
func (s *Server) Run(in io.Reader) int {
	r := bufio.NewReader(in)
	for {
		body, err := readMessage(r)
		if err != nil {
			if err == io.EOF {
				return s.exitCode
			}
			return 1
		}

		var msg rpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			fmt.Fprintf(os.Stderr, "langsvr: malformed JSON: %v\n", err)
			continue
		}

		if isResponse(msg) {
			// This server never sends client-bound requests of its own in
			// the current handler set, so there is nothing to correlate a
			// response against; swallow it like an unmatched callback.
			continue
		}

		response := s.handleRequest(msg)
		if response != nil {
			s.send(response)
		}

		if s.exitCode != -1 {
			return s.exitCode
		}
	}
}

func (s *Server) send(v any) {
	body, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = writeMessage(s.out, body)
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func okResponse(id json.RawMessage, result any) *response {
	return &response{JSONRPC: "2.0", ID: id, Result: result}
}

// protocolError reports a lifecycle violation (request before initialize,
// before initialized, or after shutdown), mirroring handleRequest's three
// std::runtime_error throws for these cases. Notifications (nil ID) are
// dropped rather than answered, same as everywhere else in this dispatch.
func protocolError(id json.RawMessage, message string) *response {
	if id == nil {
		return nil
	}
	return &response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: -32002, Message: message}}
}

type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

func (s *Server) notify(method string, params any) {
	s.send(notification{JSONRPC: "2.0", Method: method, Params: params})
}

// handleRequest dispatches one request/notification, mirroring
// CslLangSvr.cpp's handleRequest method-name switch. Notifications have
// no ID and so produce no response, matching JSON-RPC semantics and the
// original's early-return-nil-on-notification behavior.
func (s *Server) handleRequest(msg rpcMessage) *response {
	if msg.Method == "initialize" {
		if s.serverInitialized {
			return protocolError(msg.ID, "Initialize request may only be sent once")
		}
		return okResponse(msg.ID, s.handleInitialize(msg.Params))
	}
	if !s.serverInitialized {
		return protocolError(msg.ID, "Server not initialized")
	}
	if msg.Method == "initialized" {
		s.clientInitialized = true
		return nil
	}
	if !s.clientInitialized {
		return protocolError(msg.ID, "Client not initialized")
	}
	if s.shutdown && msg.Method != "exit" {
		return protocolError(msg.ID, "Server already shutdown")
	}

	switch msg.Method {
	case "shutdown":
		s.shutdown = true
		return okResponse(msg.ID, nil)
	case "exit":
		if s.shutdown {
			s.exitCode = 0
		} else {
			s.exitCode = 1
		}
		return nil
	case "$/setTrace":
		s.handleSetTrace(msg.Params)
		return nil
	case "textDocument/didOpen":
		s.handleDidOpen(msg.Params)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(msg.Params)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(msg.Params)
		return nil
	case "textDocument/hover":
		result, err := s.handleHover(msg.Params)
		return s.respond(msg.ID, result, err)
	case "textDocument/definition":
		result, err := s.handleDefinition(msg.Params)
		return s.respond(msg.ID, result, err)
	case "textDocument/completion":
		result, err := s.handleCompletion(msg.Params)
		return s.respond(msg.ID, result, err)
	case "textDocument/references":
		result, err := s.handleReferences(msg.Params)
		return s.respond(msg.ID, result, err)
	case "textDocument/rename":
		result, err := s.handleRename(msg.Params)
		return s.respond(msg.ID, result, err)
	case "textDocument/semanticTokens/full":
		result, err := s.handleSemanticTokens(msg.Params)
		return s.respond(msg.ID, result, err)
	case "textDocument/formatting":
		result, err := s.handleFormatting(msg.Params)
		return s.respond(msg.ID, result, err)
	case "textDocument/foldingRange":
		result, err := s.handleFoldingRange(msg.Params)
		return s.respond(msg.ID, result, err)
	case "csl/generateHtmlDoc":
		result, err := s.handleGenerateHtmlDoc(msg.Params)
		return s.respond(msg.ID, result, err)
	default:
		if msg.ID != nil {
			return &response{JSONRPC: "2.0", ID: msg.ID, Error: &rpcError{Code: -32601, Message: "method not found: " + msg.Method}}
		}
		return nil
	}
}

// respond turns a handler's (result, err) pair into a JSON-RPC success
// or error response, the Go-error equivalent of CslLangSvr.cpp's
// handleRequest catching a thrown std::runtime_error and converting it
// to an "error" response member.
func (s *Server) respond(id json.RawMessage, result json.RawMessage, err error) *response {
	if err != nil {
		return &response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: -32000, Message: err.Error()}}
	}
	return okResponse(id, result)
}
