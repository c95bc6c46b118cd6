package http

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	requestTimeout = 30 * time.Second
	retryCount     = 3
	retryWait      = 500 * time.Millisecond
	retryMaxWait   = 5 * time.Second
)

type Client struct {
	rc *resty.Client
}

func NewClient() *Client {
	rc := resty.New().
		SetTimeout(requestTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryMaxWait).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			// retry transport faults and rate limiting, never rejected actions
			return err != nil || res.StatusCode() == 429
		})
	return &Client{rc: rc}
}

func (c *Client) PostJSON(url string, reqBody []byte) (statusCode int, resBody []byte, err error) {
	res, err := c.rc.R().
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(url)
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode(), res.Body(), nil
}
