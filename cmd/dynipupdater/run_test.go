package main

import (
	"bytes"
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"dynipupdater/internal/app"
	"dynipupdater/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedResolver string

func (r fixedResolver) Resolve(context.Context, string) (string, error) {
	return string(r), nil
}

type lifecycleEC2 struct {
	authorize   atomic.Int32
	revoke      atomic.Int32
	onAuthorize func()
}

func (e *lifecycleEC2) AuthorizeSecurityGroupIngress(context.Context, *ec2.AuthorizeSecurityGroupIngressInput, ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	e.authorize.Add(1)
	if e.onAuthorize != nil {
		e.onAuthorize()
	}
	return &ec2.AuthorizeSecurityGroupIngressOutput{Return: aws.Bool(true)}, nil
}

func (e *lifecycleEC2) RevokeSecurityGroupIngress(context.Context, *ec2.RevokeSecurityGroupIngressInput, ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error) {
	e.revoke.Add(1)
	return &ec2.RevokeSecurityGroupIngressOutput{Return: aws.Bool(true)}, nil
}

func newCore(api *lifecycleEC2) *app.App {
	return app.New(models.Config{
		Settings: models.Settings{
			IPServer:   "https://checkip.amazonaws.com",
			DeviceName: "laptop",
			Rules: []models.Rule{
				{SecurityGroupID: "sg-1", Port: 22},
				{SecurityGroupID: "sg-2", Port: 3389},
			},
		},
	}, fixedResolver("203.0.113.5"), api)
}

func TestServe_SignalWhileOpening(t *testing.T) {
	signals := make(chan os.Signal, 1)
	api := &lifecycleEC2{}
	api.onAuthorize = func() {
		if api.authorize.Load() == 1 {
			signals <- syscall.SIGTERM
		}
	}
	core := newCore(api)

	var out bytes.Buffer
	err := serve(context.Background(), &out, core, models.HTTPAPI{}, nil, signals)
	require.NoError(t, err)

	assert.Equal(t, int32(2), api.authorize.Load())
	assert.Equal(t, int32(2), api.revoke.Load())
	assert.True(t, core.Closed())
	assert.Contains(t, out.String(), "Closing ports")
	assert.Contains(t, out.String(), "Success: Connection to port 3389 CLOSED")
}

func TestServe_WaitsForSignal(t *testing.T) {
	signals := make(chan os.Signal, 1)
	api := &lifecycleEC2{}
	core := newCore(api)

	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), &bytes.Buffer{}, core, models.HTTPAPI{}, nil, signals)
	}()

	require.Eventually(t, func() bool { return api.authorize.Load() == 2 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, api.revoke.Load())

	signals <- os.Interrupt
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("serve did not return after the signal")
	}
	assert.Equal(t, int32(2), api.revoke.Load())
}
