// Command testservers runs throwaway local servers for manual smoke testing.
//
// HTTP mode serves a configurable status code with optional artificial
// latency; flashkv mode speaks the line protocol against an in-memory store.
//
//	go run ./scripts/testservers -mode http -port 8080 -status 200 -delay 5ms
//	go run ./scripts/testservers -mode flashkv -port 6379
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

func main() {
	mode := flag.String("mode", "", "Server mode: http or flashkv")
	port := flag.Int("port", 0, "Listening port")
	statusCode := flag.Int("status", 200, "HTTP status code to return (http mode)")
	delay := flag.Duration("delay", 0, "Artificial latency per request")
	flag.Parse()

	if *port <= 0 {
		log.Fatal("a positive -port is required")
	}

	switch *mode {
	case "http":
		runHTTP(*port, *statusCode, *delay)
	case "flashkv":
		runFlashKV(*port, *delay)
	default:
		log.Fatalf("unknown -mode %q: use http or flashkv", *mode)
	}
}

func runHTTP(port, statusCode int, delay time.Duration) {
	addr := fmt.Sprintf(":%d", port)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, "%d %s\n", statusCode, http.StatusText(statusCode))
	})
	log.Printf("http test server on %s returning %d (delay %s)", addr, statusCode, delay)
	log.Fatal(http.ListenAndServe(addr, handler))
}

func runFlashKV(port int, delay time.Duration) {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	log.Printf("flashkv test server on %s (delay %s)", addr, delay)

	store := &kvStore{data: map[string]string{}}
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Fatalf("accept: %v", err)
		}
		go serveConn(conn, store, delay)
	}
}

type kvStore struct {
	mu   sync.Mutex
	data map[string]string
}

func serveConn(conn net.Conn, store *kvStore, delay time.Duration) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		response := store.handle(strings.TrimSpace(line))
		if _, err := conn.Write([]byte(response + "\r\n")); err != nil {
			return
		}
	}
}

func (s *kvStore) handle(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "-ERR empty command"
	}
	verb := strings.ToUpper(fields[0])
	args := fields[1:]

	s.mu.Lock()
	defer s.mu.Unlock()

	switch verb {
	case "PING":
		return "+PONG"
	case "SET":
		if len(args) < 2 {
			return "-ERR wrong number of arguments for SET"
		}
		s.data[args[0]] = strings.Join(args[1:], " ")
		return "+OK"
	case "GET":
		if len(args) < 1 {
			return "-ERR wrong number of arguments for GET"
		}
		if value, ok := s.data[args[0]]; ok {
			return value
		}
		return "(nil)"
	case "DEL":
		if len(args) < 1 {
			return "-ERR wrong number of arguments for DEL"
		}
		if _, ok := s.data[args[0]]; ok {
			delete(s.data, args[0])
			return ":1"
		}
		return ":0"
	case "EXISTS":
		if len(args) < 1 {
			return "-ERR wrong number of arguments for EXISTS"
		}
		if _, ok := s.data[args[0]]; ok {
			return ":1"
		}
		return ":0"
	case "INCR":
		if len(args) < 1 {
			return "-ERR wrong number of arguments for INCR"
		}
		n, err := strconv.ParseInt(s.data[args[0]], 10, 64)
		if err != nil && s.data[args[0]] != "" {
			return "-ERR value is not an integer"
		}
		n++
		s.data[args[0]] = strconv.FormatInt(n, 10)
		return ":" + strconv.FormatInt(n, 10)
	case "KEYS":
		return ":" + strconv.Itoa(len(s.data))
	case "FLUSHDB":
		s.data = map[string]string{}
		return "+OK"
	default:
		return "-ERR unknown command '" + verb + "'"
	}
}
