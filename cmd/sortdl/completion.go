package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

func handleCompletion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: sortdl completion [bash|zsh|fish]")
	}
	shell := fs.Arg(0)
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		return fmt.Errorf("unknown shell: %s", shell)
	}
	return nil
}

const bashCompletion = `# bash completion for sortdl
_sortdl_completions()
{
    local cur prev words cword
    _init_completion || return
    local cmds="config rules categories resolve simulate history tui clean completion version help"
    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "${cmds}" -- "$cur") )
        return
    fi
    case ${words[1]} in
        config)
            COMPREPLY=( $(compgen -W "validate print init --config --log-level --json --force" -- "$cur") ) ;;
        rules)
            COMPREPLY=( $(compgen -W "list add remove export import --config --log-level --json --site --ext --folder --output --input --merge" -- "$cur") ) ;;
        categories)
            COMPREPLY=( $(compgen -W "list --config --log-level --json" -- "$cur") ) ;;
        resolve)
            COMPREPLY=( $(compgen -W "--config --log-level --json" -- "$cur") ) ;;
        simulate)
            COMPREPLY=( $(compgen -W "--config --log-level --json --answer" -- "$cur") ) ;;
        history)
            COMPREPLY=( $(compgen -W "--config --log-level --json --limit" -- "$cur") ) ;;
        tui)
            COMPREPLY=( $(compgen -W "--config --log-level" -- "$cur") ) ;;
        clean)
            COMPREPLY=( $(compgen -W "--config --log-level --json --age" -- "$cur") ) ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") ) ;;
    esac
}
complete -F _sortdl_completions sortdl
`

const zshCompletion = `#compdef sortdl
_sortdl() {
  local -a cmds
  cmds=(
    'config:Validate, print, or initialize a config file'
    'rules:Manage site rules'
    'categories:List file-type categories'
    'resolve:Show the routing decision for a URL and filename'
    'simulate:Run a scenario file through the sorting engine'
    'history:Show recent sorting activity'
    'tui:Open the interactive terminal dashboard'
    'clean:Remove expired suggestion and proposal records'
    'completion:Output shell completion'
    'version:Print version'
    'help:Show help'
  )
  if (( CURRENT == 2 )); then
    _describe 'command' cmds
    return
  fi
  case $words[2] in
    config) _values 'subcommand' validate print init ;;
    rules) _values 'subcommand' list add remove export import ;;
    categories) _values 'subcommand' list ;;
    completion) _values 'shell' bash zsh fish ;;
  esac
}
_sortdl "$@"
`

const fishCompletion = `# fish completion for sortdl
complete -c sortdl -f
complete -c sortdl -n "__fish_use_subcommand" -a "config rules categories resolve simulate history tui clean completion version help"
complete -c sortdl -n "__fish_seen_subcommand_from config" -a "validate print init"
complete -c sortdl -n "__fish_seen_subcommand_from rules" -a "list add remove export import"
complete -c sortdl -n "__fish_seen_subcommand_from categories" -a "list"
complete -c sortdl -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
