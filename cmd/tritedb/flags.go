// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import cli "gopkg.in/urfave/cli.v1"

var (
	addrFlag = cli.StringFlag{
		Name:  "addr, a",
		Value: "127.0.0.1",
		Usage: "TCP address to listen on",
	}
	portFlag = cli.IntFlag{
		Name:  "port, p",
		Value: 9191,
		Usage: "TCP port to listen on",
	}
	unixSocketFlag = cli.StringFlag{
		Name:  "unix-socket, s",
		Usage: "Unix domain socket path to listen on instead of TCP",
	}
	confPathFlag = cli.StringFlag{
		Name:  "conf-path, c",
		Usage: "path to a key=value config file",
	}
	modeFlag = cli.StringFlag{
		Name:  "mode, m",
		Value: "STANDALONE",
		Usage: "run mode (STANDALONE|CLUSTER)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity, v",
		Value: 3,
		Usage: "log verbosity (0=crit .. 5=trace)",
	}
	maxRequestSizeFlag = cli.StringFlag{
		Name:  "max-request-size",
		Value: "2mb",
		Usage: "maximum accepted packet size, with kb/mb/gb suffix",
	}
	tcpBacklogFlag = cli.IntFlag{
		Name:  "tcp-backlog",
		Value: 128,
		Usage: "advisory TCP listen backlog, echoed by INFO",
	}
	joinHostFlag = cli.StringFlag{
		Name:  "host",
		Usage: "peer host to join",
	}
	joinPortFlag = cli.IntFlag{
		Name:  "port",
		Usage: "peer port to join",
	}
)
