package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatterLayout(t *testing.T) {
	f := &CustomFormatter{SystemName: "taskboard-service"}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: TEST, Description: something happened",
		Data:    logrus.Fields{"status": 404, "method": "GET"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "Date: 2024-05-17, Time: 09:30:00, "))
	assert.Contains(t, line, "Event Source: taskboard-service, ")
	assert.Contains(t, line, "Event Type: WARNING, ")
	assert.Contains(t, line, "Message: Event ID: TEST, Description: something happened")
	assert.Contains(t, line, "Fields: method=GET status=404")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestCustomFormatterUniqueEventIDs(t *testing.T) {
	f := &CustomFormatter{SystemName: "svc"}
	entry := &logrus.Entry{Logger: logrus.New(), Time: time.Now(), Level: logrus.InfoLevel, Message: "m"}

	first, err := f.Format(entry)
	require.NoError(t, err)
	second, err := f.Format(entry)
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second))
}
