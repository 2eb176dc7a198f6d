// Copyright 2026 The SNFS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command snfsctl is a small interactive driver over internal/client and
// internal/client/fileapi, one subcommand per operation.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/snfs-project/snfs/internal/client"
	"github.com/snfs-project/snfs/internal/client/fileapi"
	"github.com/spf13/cobra"
)

var (
	serverSocket string
	clientSocket string
)

func dial() (*client.Stub, error) {
	cs := clientSocket
	if cs == "" {
		cs = fmt.Sprintf("/tmp/snfsctl-%d.sock", os.Getpid())
	}
	return client.Dial(cs, serverSocket)
}

var rootCmd = &cobra.Command{
	Use:   "snfsctl",
	Short: "Talk to a running snfsd server",
}

var pingCmd = &cobra.Command{
	Use:   "ping [message]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Round-trip a diagnostic message off the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := "ping"
		if len(args) == 1 {
			msg = args[0]
		}
		stub, err := dial()
		if err != nil {
			return err
		}
		defer stub.Close()
		reply, err := stub.Ping(msg)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <path>",
	Args:  cobra.ExactArgs(1),
	Short: "List a directory's entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		stub, err := dial()
		if err != nil {
			return err
		}
		defer stub.Close()
		fa := fileapi.Init(stub)
		names, err := fa.ListDir(args[0])
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Args:  cobra.ExactArgs(1),
	Short: "Create a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		stub, err := dial()
		if err != nil {
			return err
		}
		defer stub.Close()
		return fileapi.Init(stub).Mkdir(args[0])
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Args:  cobra.ExactArgs(1),
	Short: "Print a file's content to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		stub, err := dial()
		if err != nil {
			return err
		}
		defer stub.Close()
		fa := fileapi.Init(stub)
		fd, err := fa.Open(args[0], 0)
		if err != nil {
			return err
		}
		defer fa.Close(fd)

		buf := make([]byte, 4096)
		for {
			n, rerr := fa.Read(fd, buf)
			if n > 0 {
				if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
					return werr
				}
			}
			if rerr != nil {
				return rerr
			}
			if n == 0 {
				return nil
			}
		}
	},
}

var putCmd = &cobra.Command{
	Use:   "put <local-file> <remote-path>",
	Args:  cobra.ExactArgs(2),
	Short: "Upload a local file's content to a remote path, creating it if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		stub, err := dial()
		if err != nil {
			return err
		}
		defer stub.Close()
		fa := fileapi.Init(stub)
		fd, err := fa.Open(args[1], fileapi.OCreate)
		if err != nil {
			return err
		}
		defer fa.Close(fd)
		n, err := fa.Write(fd, data)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes\n", n)
		return nil
	},
}

var cpCmd = &cobra.Command{
	Use:   "cp <src-path> <dst-path>",
	Args:  cobra.ExactArgs(2),
	Short: "Copy a file entirely server-side",
	RunE: func(cmd *cobra.Command, args []string) error {
		stub, err := dial()
		if err != nil {
			return err
		}
		defer stub.Close()
		return stub.Copy(args[0], args[1], false)
	},
}

var debugDumpCmd = &cobra.Command{
	Use:   "debug-dump",
	Short: "Print the server's block and inode bitmaps",
	RunE: func(cmd *cobra.Command, args []string) error {
		stub, err := dial()
		if err != nil {
			return err
		}
		defer stub.Close()
		text, err := stub.DebugDump()
		if err != nil {
			return err
		}
		_, err = io.WriteString(os.Stdout, text)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverSocket, "server", "S", "/tmp/snfsd.sock", "Server socket path.")
	rootCmd.PersistentFlags().StringVarP(&clientSocket, "client-socket", "c", "", "Client-bound socket path (default: derived from the process id).")
	rootCmd.AddCommand(pingCmd, lsCmd, mkdirCmd, catCmd, putCmd, cpCmd, debugDumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
