package utils

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ReadLine reads one line without its line ending. A final line without a newline is
// returned before io.EOF is reported.
func ReadLine(reader *bufio.Reader, output *string) error {
	o, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || o == "") {
		*output = ""
		return err
	}

	*output = strings.TrimRight(o, "\r\n")
	return nil
}
