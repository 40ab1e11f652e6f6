// Copyright 2016 Aleksandr Demakin. All rights reserved.

package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	RunHelper(map[string]HelperCommand{
		"echo": func(args []string) error {
			fmt.Println(strings.Join(args, " "))
			return nil
		},
		"fail": func(args []string) error {
			return errors.New("failed on purpose")
		},
		"sleep": func(args []string) error {
			fmt.Println("sleeping")
			time.Sleep(time.Minute)
			return nil
		},
	})
	os.Exit(m.Run())
}

func TestRunTestApp(t *testing.T) {
	a := assert.New(t)
	result := RunTestApp([]string{"echo", "hello", "world"}, nil)
	a.NoError(result.Err)
	a.Equal("hello world\n", result.Output)
	result = RunTestApp([]string{"fail"}, nil)
	a.Error(result.Err)
	a.Contains(result.Output, "failed on purpose")
}

func TestTestAppKill(t *testing.T) {
	a := assert.New(t)
	app, err := StartTestApp([]string{"sleep"})
	if !a.NoError(err) {
		return
	}
	if !a.NoError(app.WaitForLine("sleeping", 10*time.Second)) {
		app.Kill()
		return
	}
	a.NoError(app.Kill())
	a.Error(app.Wait().Err)
}

func TestRunTestAppAsyncKill(t *testing.T) {
	a := assert.New(t)
	killChan := make(chan bool, 1)
	ch := RunTestAppAsync([]string{"sleep"}, killChan)
	killChan <- true
	result, ok := WaitForAppResultChan(ch, 10*time.Second)
	a.True(ok)
	a.Error(result.Err)
}
