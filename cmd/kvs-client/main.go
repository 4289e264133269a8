// Command kvs-client is a minimal one-shot client for the key-value store
// server: each invocation opens one TCP connection, sends one Command, reads
// one Response, and exits.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"

	"github.com/nilotpal-labs/kvs/internal/command"
	"github.com/nilotpal-labs/kvs/internal/protocol"
	"github.com/spf13/cobra"
)

func main() {
	var addr string

	root := &cobra.Command{Use: "kvs-client"}
	root.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:4000", "server address")

	root.AddCommand(setCmd(&addr), getCmd(&addr), rmCmd(&addr))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set the value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, command.Set(args[0], args[1]))
			if err != nil {
				return err
			}
			if resp.Status == protocol.StatusFail {
				return fmt.Errorf("%s", resp.Error)
			}
			return nil
		},
	}
}

func getCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get the value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, command.Get(args[0]))
			if err != nil {
				return err
			}
			if resp.Status == protocol.StatusFail {
				return fmt.Errorf("%s", resp.Error)
			}
			if !resp.Found {
				fmt.Println("Key not found")
				return nil
			}
			fmt.Println(resp.Value)
			return nil
		},
	}
}

func rmCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, command.Rm(args[0]))
			if err != nil {
				return err
			}
			if resp.Status == protocol.StatusFail {
				fmt.Fprintln(os.Stderr, resp.Error)
				os.Exit(1)
			}
			return nil
		},
	}
}

// roundTrip dials addr, sends cmd, and returns the single Response the
// server replies with.
func roundTrip(addr string, cmd command.Command) (protocol.Response, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return protocol.Response{}, err
	}
	defer conn.Close()

	if err := protocol.WriteCommand(conn, cmd); err != nil {
		return protocol.Response{}, err
	}

	return protocol.ReadResponse(bufio.NewReader(conn))
}
