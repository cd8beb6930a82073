package commands

import (
	"context"
	"fmt"

	"todoctl/internal/account"
	"todoctl/internal/deeplink"
	"todoctl/internal/refresh"
	"todoctl/internal/service"
	"todoctl/internal/tasks"
	"todoctl/internal/view"
)

// errOutOfRange is returned by findTaskByNumber.
type errOutOfRange int

func (e errOutOfRange) Error() string {
	return fmt.Sprintf("task number out of range: %d", int(e))
}

// loadTasks builds a Task Store for env and performs the initial fetch.
func loadTasks(ctx context.Context, env *Env) (*tasks.Store, error) {
	store := tasks.New(env.Service, &refresh.Signal{}, env.Log)
	if _, err := store.Refresh(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// findTaskByNumber returns the task shown as num by the list command.
func findTaskByNumber(store *tasks.Store, num int) (service.Task, error) {
	list := store.Tasks()
	if num < 1 || num > len(list) {
		return service.Task{}, errOutOfRange(num)
	}
	return list[num-1], nil
}

// newAccount wires an account controller over env's session. link, when
// set, is the reset link the flow starts from.
func newAccount(env *Env, link string) (*account.Controller, *view.Machine) {
	var loc deeplink.Location
	if link != "" {
		loc = deeplink.NewLocation(link)
	}
	m := view.New(env.Session, &refresh.Signal{}, loc)
	return account.New(env.Service, m, env.Log), m
}
