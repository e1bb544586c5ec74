// Command loopback demonstrates two Channels talking over the two ends
// of a net.Pipe, one goroutine writing a sequence of messages while
// another reads them back, coordinated with an errgroup so either side's
// failure tears down the other.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/wrapperspb"

	commsprotobuf "github.com/tidewise/drivers-comms-protobuf"
	"github.com/tidewise/drivers-comms-protobuf/log"
	"github.com/tidewise/drivers-comms-protobuf/protocol"
	"github.com/tidewise/drivers-comms-protobuf/protomsg"
	"github.com/tidewise/drivers-comms-protobuf/transport"
)

func main() {
	count := flag.Int("count", 10, "number of messages to send")
	psk := flag.String("psk", "", "pre-shared key; encryption disabled when empty")
	logFile := flag.String("logfile", "", "write channel logs to this file instead of stdout")
	flag.Parse()

	if err := run(*count, *psk, *logFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(count int, psk, logFile string) error {
	logger := log.Stdout("loopback", log.InfoLevel, true)

	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	var opts []commsprotobuf.Option
	if psk != "" {
		opts = append(opts, commsprotobuf.WithEncryptionKey([]byte(psk)))
	}
	if logFile != "" {
		opts = append(opts, commsprotobuf.WithLogFile(logFile, log.InfoLevel, false))
	}

	writer, err := commsprotobuf.NewChannel(
		transport.NewStreamTransport(a, protocol.MaxPayloadSize, logger.Sub("writer")),
		protocol.MaxPayloadSize,
		append([]commsprotobuf.Option{commsprotobuf.WithLogger(logger.Sub("writer"))}, opts...)...,
	)
	if err != nil {
		return fmt.Errorf("constructing writer channel: %w", err)
	}
	reader, err := commsprotobuf.NewChannel(
		transport.NewStreamTransport(b, protocol.MaxPayloadSize, logger.Sub("reader")),
		protocol.MaxPayloadSize,
		append([]commsprotobuf.Option{commsprotobuf.WithLogger(logger.Sub("reader"))}, opts...)...,
	)
	if err != nil {
		return fmt.Errorf("constructing reader channel: %w", err)
	}

	dec := protomsg.NewDecoder(func() *wrapperspb.Int32Value { return &wrapperspb.Int32Value{} })

	var group errgroup.Group
	group.Go(func() error {
		for i := 0; i < count; i++ {
			msg := protomsg.NewEncoder(wrapperspb.Int32(int32(i)))
			if err := writer.Write(msg); err != nil {
				return fmt.Errorf("writing message %d: %w", i, err)
			}
			time.Sleep(time.Millisecond)
		}
		return nil
	})
	group.Go(func() error {
		for i := 0; i < count; i++ {
			got, err := commsprotobuf.Read(reader, dec)
			if err != nil {
				return fmt.Errorf("reading message %d: %w", i, err)
			}
			logger.Infof("received %d", got.GetValue())
		}
		return nil
	})

	return group.Wait()
}
