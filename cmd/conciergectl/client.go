package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

func client() *resty.Client {
	c := resty.New().
		SetBaseURL(apiFlag).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)
	if tokenFlag != "" {
		c.SetAuthToken(tokenFlag)
	}
	return c
}

func doPost(path string, payload interface{}) ([]byte, error) {
	resp, err := client().R().SetBody(payload).Post(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return resp.Body(), nil
}

func doPut(path string, payload interface{}) ([]byte, error) {
	resp, err := client().R().SetBody(payload).Put(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return resp.Body(), nil
}

func doDelete(path string) ([]byte, error) {
	resp, err := client().R().Delete(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return resp.Body(), nil
}

func doGet(path string, query map[string]string) ([]byte, error) {
	req := client().R()
	if query != nil {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return resp.Body(), nil
}
